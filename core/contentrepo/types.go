package contentrepo

import (
	"strings"
	"time"
)

// NodeKind distinguishes content-bearing files from folders.
type NodeKind string

const (
	KindFile   NodeKind = "file"
	KindFolder NodeKind = "folder"
)

// Actor identifies the user attached to a repository node.
type Actor struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// DocumentSnapshot is the normalized view of a repository node, rebuilt on
// every search. It is owned by the current reconciliation run and discarded
// afterwards; the event log is the only persisted history.
type DocumentSnapshot struct {
	// ID is the stable external identifier of the document.
	ID string
	// Name is the file or folder name.
	Name string
	// Kind is file or folder.
	Kind NodeKind
	// ParentID identifies the containing folder; empty when unknown.
	ParentID string
	// CreatedAt is zero when the repository did not report a creation date.
	CreatedAt time.Time
	// ModifiedAt is zero when the repository did not report a modification date.
	ModifiedAt time.Time
	// Creator and Modifier may be nil when the repository omits them.
	Creator  *Actor
	Modifier *Actor
	// MimeType and SizeBytes are populated only for content-bearing nodes.
	MimeType  string
	SizeBytes int64
	// HasContent reports whether the node carried a content element.
	HasContent bool
}

// rawNode mirrors a single search result entry on the wire.
type rawNode struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	NodeType       string     `json:"nodeType"`
	ParentID       string     `json:"parentId"`
	CreatedAt      *time.Time `json:"createdAt"`
	ModifiedAt     *time.Time `json:"modifiedAt"`
	CreatedByUser  *Actor     `json:"createdByUser"`
	ModifiedByUser *Actor     `json:"modifiedByUser"`
	Content        *struct {
		MimeType    string `json:"mimeType"`
		SizeInBytes int64  `json:"sizeInBytes"`
	} `json:"content"`
}

// toSnapshot normalizes a raw search entry.
func (n rawNode) toSnapshot() DocumentSnapshot {
	snap := DocumentSnapshot{
		ID:       n.ID,
		Name:     n.Name,
		Kind:     KindFile,
		ParentID: n.ParentID,
		Creator:  n.CreatedByUser,
		Modifier: n.ModifiedByUser,
	}
	if strings.Contains(n.NodeType, "folder") {
		snap.Kind = KindFolder
	}
	if n.CreatedAt != nil {
		snap.CreatedAt = *n.CreatedAt
	}
	if n.ModifiedAt != nil {
		snap.ModifiedAt = *n.ModifiedAt
	}
	if n.Content != nil {
		snap.HasContent = true
		snap.MimeType = n.Content.MimeType
		snap.SizeBytes = n.Content.SizeInBytes
	}
	return snap
}
