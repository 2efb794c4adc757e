package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CaseStatus represents the status of a case
type CaseStatus string

const (
	CasePending   CaseStatus = "pending"
	CaseCompleted CaseStatus = "completed"
	CaseHearing   CaseStatus = "hearing"
)

// OnBehalfOf represents which party the user represents in a case
type OnBehalfOf string

const (
	BehalfPetitioner  OnBehalfOf = "Petitioner"
	BehalfRespondent  OnBehalfOf = "Respondent"
	BehalfComplainant OnBehalfOf = "Complainant"
	BehalfAccused     OnBehalfOf = "Accused"
	BehalfPlantiff    OnBehalfOf = "Plantiff"
	BehalfDHR         OnBehalfOf = "DHR"
	BehalfJDR         OnBehalfOf = "JDR"
	BehalfAppellant   OnBehalfOf = "Appellant"
)

// AttachmentKind distinguishes the two shapes of a case attachment
type AttachmentKind string

const (
	AttachmentFile AttachmentKind = "file"
	AttachmentNote AttachmentKind = "note"
)

// Attachment is an entry in one of a case's attachment sections. Exactly one
// of FileID or NoteID is set, matching Kind.
type Attachment struct {
	Kind    AttachmentKind `json:"kind"`
	FileID  *uuid.UUID     `json:"file_id,omitempty"`
	NoteID  *uuid.UUID     `json:"note_id,omitempty"`
	Name    string         `json:"name"`
	AddedAt time.Time      `json:"added_at"`
}

// NewFileAttachment builds a file-backed attachment
func NewFileAttachment(fileID uuid.UUID, name string) Attachment {
	return Attachment{
		Kind:    AttachmentFile,
		FileID:  &fileID,
		Name:    name,
		AddedAt: time.Now().UTC(),
	}
}

// NewNoteAttachment builds a note-backed attachment
func NewNoteAttachment(noteID uuid.UUID, name string) Attachment {
	return Attachment{
		Kind:    AttachmentNote,
		NoteID:  &noteID,
		Name:    name,
		AddedAt: time.Now().UTC(),
	}
}

// Validate checks that the attachment's reference matches its kind
func (a Attachment) Validate() error {
	switch a.Kind {
	case AttachmentFile:
		if a.FileID == nil || a.NoteID != nil {
			return errors.New("file attachment must reference exactly one file")
		}
	case AttachmentNote:
		if a.NoteID == nil || a.FileID != nil {
			return errors.New("note attachment must reference exactly one note")
		}
	default:
		return fmt.Errorf("unknown attachment kind: %s", a.Kind)
	}
	return nil
}

// AttachmentList is a JSONB-stored list of attachments
type AttachmentList []Attachment

// Value implements driver.Valuer for database storage
func (l AttachmentList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (l *AttachmentList) Scan(value interface{}) error {
	if value == nil {
		*l = AttachmentList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("cannot scan attachment list from non-string type")
	}

	return json.Unmarshal(data, l)
}

// AttachmentSection names one of the five per-case attachment lists
type AttachmentSection string

const (
	SectionDrafts           AttachmentSection = "drafts"
	SectionOpponentDrafts   AttachmentSection = "opponentDrafts"
	SectionCourtOrders      AttachmentSection = "courtOrders"
	SectionEvidence         AttachmentSection = "evidence"
	SectionRelevantSections AttachmentSection = "relevantSections"
)

// ValidSection reports whether s names a known attachment section
func ValidSection(s AttachmentSection) bool {
	switch s {
	case SectionDrafts, SectionOpponentDrafts, SectionCourtOrders, SectionEvidence, SectionRelevantSections:
		return true
	}
	return false
}

// Case represents a court case tracked by a user
type Case struct {
	ID                       uuid.UUID  `json:"id"`
	UserID                   uuid.UUID  `json:"user_id"`
	Title                    string     `json:"title"`
	CaseNo                   string     `json:"case_no"`
	Type                     string     `json:"type"`
	Status                   CaseStatus `json:"status"`
	Court                    string     `json:"court"`
	NextHearing              *time.Time `json:"next_hearing,omitempty"`
	PartyName                string     `json:"party_name"`
	Respondent               string     `json:"respondent"`
	Lawyer                   string     `json:"lawyer"`
	ContactNumber            string     `json:"contact_number"`
	AdvocateContactNumber    *string    `json:"advocate_contact_number,omitempty"`
	AdversePartyAdvocateName *string    `json:"adverse_party_advocate_name,omitempty"`
	CaseYear                 string     `json:"case_year"`
	OnBehalfOf               OnBehalfOf `json:"on_behalf_of"`
	Description              *string    `json:"description,omitempty"`

	Drafts           AttachmentList `json:"drafts"`
	OpponentDrafts   AttachmentList `json:"opponent_drafts"`
	CourtOrders      AttachmentList `json:"court_orders"`
	Evidence         AttachmentList `json:"evidence"`
	RelevantSections AttachmentList `json:"relevant_sections"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Section returns a pointer to the named attachment list, or nil if unknown
func (c *Case) Section(name AttachmentSection) *AttachmentList {
	switch name {
	case SectionDrafts:
		return &c.Drafts
	case SectionOpponentDrafts:
		return &c.OpponentDrafts
	case SectionCourtOrders:
		return &c.CourtOrders
	case SectionEvidence:
		return &c.Evidence
	case SectionRelevantSections:
		return &c.RelevantSections
	}
	return nil
}
