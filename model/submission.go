package model

import (
	"errors"
	"time"
)

// Kind distinguishes text-only ads from photo ads.
type Kind int

const (
	KindText Kind = iota
	KindPhoto
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPhoto:
		return "photo"
	default:
		return "unknown"
	}
}

// Author identifies the user who sent a submission.
type Author struct {
	UserID int64
	// Handle is the display handle, empty when the platform did not provide one.
	Handle string
}

// Submission is a single user-originated ad candidate.
type Submission struct {
	ID        string
	Kind      Kind
	Body      string
	MediaRef  string
	Author    Author
	Price     string
	CreatedAt time.Time
	// Origin is an opaque transport reference used to reply to the author.
	Origin string
}

var (
	ErrMissingMedia    = errors.New("photo submission without media")
	ErrUnexpectedMedia = errors.New("text submission with media")
	ErrUnknownKind     = errors.New("unknown submission kind")
)

// NewTextSubmission builds a text submission.
func NewTextSubmission(id string, author Author, body, origin string, at time.Time) *Submission {
	return &Submission{
		ID:        id,
		Kind:      KindText,
		Body:      body,
		Author:    author,
		CreatedAt: at,
		Origin:    origin,
	}
}

// NewPhotoSubmission builds a photo submission. The caption may be empty.
func NewPhotoSubmission(id string, author Author, caption, mediaRef, origin string, at time.Time) *Submission {
	return &Submission{
		ID:        id,
		Kind:      KindPhoto,
		Body:      caption,
		MediaRef:  mediaRef,
		Author:    author,
		CreatedAt: at,
		Origin:    origin,
	}
}

// Validate checks that MediaRef is set iff the submission is a photo.
func (s *Submission) Validate() error {
	switch s.Kind {
	case KindText:
		if s.MediaRef != "" {
			return ErrUnexpectedMedia
		}
	case KindPhoto:
		if s.MediaRef == "" {
			return ErrMissingMedia
		}
	default:
		return ErrUnknownKind
	}
	return nil
}
