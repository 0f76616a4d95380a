package models

import (
	"fmt"
	"time"
)

// base carries the fields every persistent entity shares.
type base struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
}

func (b *base) ID() string           { return b.id }
func (b *base) Sequence() int        { return b.sequence }
func (b *base) CreatedAt() time.Time { return b.createdAt }
func (b *base) UpdatedAt() time.Time { return b.updatedAt }

func (b *base) SetID(id string)          { b.id = id }
func (b *base) SetSequence(seq int)      { b.sequence = seq }
func (b *base) SetCreatedAt(t time.Time) { b.createdAt = t }
func (b *base) SetUpdatedAt(t time.Time) { b.updatedAt = t }

// PersistedScan is a cached local scan result.
type PersistedScan struct {
	base
	file ScannedFile
}

// NewPersistedScan creates a PersistedScan for the given scanned file.
func NewPersistedScan(sequence int, file ScannedFile) *PersistedScan {
	now := time.Now()
	s := &PersistedScan{file: file}
	s.sequence = sequence
	s.createdAt = now
	s.updatedAt = now
	return s
}

func (s *PersistedScan) Artist() string       { return s.file.Artist }
func (s *PersistedScan) Title() string        { return s.file.Title }
func (s *PersistedScan) Path() string         { return s.file.Path }
func (s *PersistedScan) ScannedAt() time.Time { return s.file.ScannedAt }
func (s *PersistedScan) File() ScannedFile    { return s.file }

// Validate checks required fields.
func (s *PersistedScan) Validate() error {
	if s.file.Path == "" {
		return fmt.Errorf("scanned file has no path")
	}
	if s.file.Title == "" {
		return fmt.Errorf("scanned file %s has no title", s.file.Path)
	}
	return nil
}

// PersistedCapture is a cached capture list entry.
type PersistedCapture struct {
	base
	capture Capture
}

// NewPersistedCapture creates a PersistedCapture for the given capture entry.
func NewPersistedCapture(sequence int, capture Capture) *PersistedCapture {
	now := time.Now()
	c := &PersistedCapture{capture: capture}
	c.sequence = sequence
	c.createdAt = now
	c.updatedAt = now
	return c
}

func (c *PersistedCapture) Artist() string        { return c.capture.Artist }
func (c *PersistedCapture) Title() string         { return c.capture.Title }
func (c *PersistedCapture) CapturedAt() time.Time { return c.capture.CapturedAt }
func (c *PersistedCapture) Capture() Capture      { return c.capture }

// Validate checks required fields.
func (c *PersistedCapture) Validate() error {
	if c.capture.Artist == "" && c.capture.Title == "" {
		return fmt.Errorf("capture entry is empty")
	}
	return nil
}
