package tree

import (
	"github.com/google/uuid"
)

const draftPrefix = "draft-"

// NodeID identifies a topic or lesson node. A node is either a draft with a
// client-allocated placeholder id, or persisted with the server-issued id.
// The zero value is an empty persisted id and matches nothing.
type NodeID struct {
	value string
	draft bool
}

// DraftID wraps a placeholder identifier allocated before the first save.
func DraftID(value string) NodeID {
	return NodeID{value: value, draft: true}
}

// PersistedID wraps a server-issued identifier.
func PersistedID(value string) NodeID {
	return NodeID{value: value}
}

// IsDraft reports whether the node has never been persisted.
func (id NodeID) IsDraft() bool { return id.draft }

// String returns the underlying identifier value.
func (id NodeID) String() string { return id.value }

// IsZero reports whether the id carries no value.
func (id NodeID) IsZero() bool { return id.value == "" }

// Equal compares both the identifier value and the draft/persisted tag, so a
// draft placeholder can never alias a server id with the same text.
func (id NodeID) Equal(other NodeID) bool {
	return id.value == other.value && id.draft == other.draft
}

// IDGenerator allocates locally-unique draft identifiers for nodes created
// before any server round-trip.
type IDGenerator interface {
	NextDraftID() NodeID
}

type uuidGenerator struct{}

// NewIDGenerator returns a generator backed by random UUIDs. The draft prefix
// keeps placeholders distinguishable from any server-issued identifier.
func NewIDGenerator() IDGenerator {
	return uuidGenerator{}
}

func (uuidGenerator) NextDraftID() NodeID {
	return DraftID(draftPrefix + uuid.NewString())
}

// TargetType names the kind of node a note is attached to.
type TargetType string

const (
	TargetPath   TargetType = "PATH"
	TargetTopic  TargetType = "TOPIC"
	TargetLesson TargetType = "LESSON"
)

// ResourceType distinguishes link resources from uploaded files.
type ResourceType string

const (
	ResourceLink ResourceType = "LINK"
	ResourceFile ResourceType = "FILE"
)

// Note is attached to a path, topic or lesson and renders sorted by
// DisplayIndex ascending.
type Note struct {
	ID           string
	TargetType   TargetType
	TargetID     string
	Title        string
	Content      string
	DisplayIndex int
}

// Resource belongs to exactly one lesson. Link resources carry ExternalLink;
// file resources carry SizeBytes, MimeType and ResourceURL.
type Resource struct {
	ID           string
	Name         string
	Type         ResourceType
	ExternalLink string
	SizeBytes    int64
	MimeType     string
	ResourceURL  string
}

// Tag is a shared lookup entity referenced by learning paths.
type Tag struct {
	ID    string
	Name  string
	Color string
}
