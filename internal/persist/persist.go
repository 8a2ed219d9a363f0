// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package persist implements the small versioned-header framework
// shared by every on-disk artifact format: a 4-byte magic, a 4-byte
// version, and helpers for writing/reading the fixed-width fields
// that follow. Every format in this module is a thin layer on top of
// these primitives.
package persist

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Sentinel errors classifying a failed load. Callers typically wrap
// these with %w alongside the artifact name and offending field.
var (
	// ErrBadMagic is returned when the leading 4 bytes of a file do
	// not match the expected magic for that artifact.
	ErrBadMagic = errors.New("persist: bad magic")
	// ErrBadVersion is returned when the version field is not one
	// this build knows how to read.
	ErrBadVersion = errors.New("persist: unsupported version")
	// ErrSizeMismatch is returned when a declared size field disagrees
	// with the number of bytes actually present.
	ErrSizeMismatch = errors.New("persist: size mismatch")
	// ErrTruncated is returned when a read hits EOF before a fixed-size
	// field has been fully consumed.
	ErrTruncated = errors.New("persist: truncated")
)

// CurrentVersion is the version written by this build for every
// artifact defined in this module.
const CurrentVersion uint32 = 1

// WriteHeader writes the 4-byte magic followed by a 4-byte
// little-endian version.
func WriteHeader(w io.Writer, magic [4]byte, version uint32) error {
	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("%w: write magic: %v", ErrBadMagic, err)
	}
	return WriteUint32(w, version)
}

// ReadHeader reads and validates the 4-byte magic against wantMagic,
// then reads and returns the version field. It returns ErrBadMagic,
// ErrTruncated, or ErrBadVersion (for any version other than
// CurrentVersion) wrapped with context on failure.
func ReadHeader(r io.Reader, wantMagic [4]byte) (version uint32, err error) {
	var got [4]byte
	if _, err = io.ReadFull(r, got[:]); err != nil {
		return 0, fmt.Errorf("%w: reading magic: %v", ErrTruncated, err)
	}
	if got != wantMagic {
		return 0, fmt.Errorf("%w: want %q, got %q", ErrBadMagic, wantMagic, got)
	}
	version, err = ReadUint32(r)
	if err != nil {
		return 0, fmt.Errorf("%w: reading version: %v", ErrTruncated, err)
	}
	if version != CurrentVersion {
		return version, fmt.Errorf("%w: got %d, want %d", ErrBadVersion, version, CurrentVersion)
	}
	return version, nil
}

// WriteUint32 writes v as 4 little-endian bytes.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint32 reads 4 little-endian bytes into a uint32.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteUint64 writes v as 8 little-endian bytes.
func WriteUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint64 reads 8 little-endian bytes into a uint64.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteByte writes a single byte.
func WriteByte(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// ReadByte reads a single byte.
func ReadByte(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteUint64Slice writes len(s) followed by the raw little-endian
// uint64 words of s.
func WriteUint64Slice(w io.Writer, s []uint64) error {
	if err := WriteUint64(w, uint64(len(s))); err != nil {
		return err
	}
	buf := make([]byte, 8*len(s))
	for i, v := range s {
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	_, err := w.Write(buf)
	return err
}

// ReadUint64Slice reads a length-prefixed slice of little-endian
// uint64 words written by WriteUint64Slice.
func ReadUint64Slice(r io.Reader) ([]uint64, error) {
	n, err := ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading slice length: %v", ErrTruncated, err)
	}
	buf := make([]byte, 8*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: reading %d words: %v", ErrTruncated, n, err)
	}
	s := make([]uint64, n)
	for i := range s {
		s[i] = binary.LittleEndian.Uint64(buf[i*8:])
	}
	return s, nil
}

// WriteBytes writes a length-prefixed byte slice.
func WriteBytes(w io.Writer, b []byte) error {
	if err := WriteUint64(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadBytes reads a length-prefixed byte slice written by WriteBytes.
func ReadBytes(r io.Reader) ([]byte, error) {
	n, err := ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading bytes length: %v", ErrTruncated, err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: reading %d bytes: %v", ErrTruncated, n, err)
	}
	return buf, nil
}

// CheckSize returns ErrSizeMismatch wrapped with context if got != want.
func CheckSize(field string, want, got uint64) error {
	if want != got {
		return fmt.Errorf("%w: %s: want %d, got %d", ErrSizeMismatch, field, want, got)
	}
	return nil
}
