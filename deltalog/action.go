package deltalog

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Action is the tagged-union unit of log content. The concrete types below
// (Protocol, Metadata, AddFile, RemoveFile, CommitInfo) are the only
// variants; dispatch is by a discriminant field, never by interface method
// sets beyond Type/MarshalJSON.
type Action interface {
	// Type returns the discriminant written as the action's "type" field.
	Type() string
}

// Discriminant values for the "type" field of a serialized Action.
const (
	typeProtocol   = "protocol"
	typeMetadata   = "metadata"
	typeAdd        = "add"
	typeRemove     = "remove"
	typeCommitInfo = "commitInfo"
)

// Protocol records the minimum reader/writer feature requirements for a
// table. The last Protocol action in replay order is authoritative.
type Protocol struct {
	MinReaderVersion int      `json:"minReaderVersion"`
	MinWriterVersion int      `json:"minWriterVersion"`
	ReaderFeatures   []string `json:"readerFeatures"`
	WriterFeatures   []string `json:"writerFeatures"`
}

// Type implements Action.
func (Protocol) Type() string { return typeProtocol }

// Metadata records table-level identity and configuration. The last
// Metadata action in replay order is authoritative.
type Metadata struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Format           string            `json:"format"`
	Configuration    map[string]string `json:"configuration"`
	PartitionColumns map[string]string `json:"partitionColumns"`
	CreatedTime      int64             `json:"createdTime"`
}

// Type implements Action.
func (Metadata) Type() string { return typeMetadata }

// AddFile records a data file becoming live as of the action's version.
type AddFile struct {
	Path             string            `json:"path"`
	PartitionValues  map[string]string `json:"partitionValues"`
	Size             int64             `json:"size"`
	ModificationTime int64             `json:"modificationTime"`
	DataChange       bool              `json:"dataChange"`
	Stats            map[string]string `json:"stats"`
	Tags             string            `json:"tags"`
}

// Type implements Action.
func (AddFile) Type() string { return typeAdd }

// RemoveFile records a data file leaving the live set as of the action's
// version.
type RemoveFile struct {
	Path              string            `json:"path"`
	DeletionTimestamp int64             `json:"deletionTimestamp"`
	DataChange        bool              `json:"dataChange"`
	PartitionValues   map[string]string `json:"partitionValues"`
	Size              int64             `json:"size"`
}

// Type implements Action.
func (RemoveFile) Type() string { return typeRemove }

// CommitInfo annotates a commit with operation metadata. It never affects
// live state during replay.
type CommitInfo struct {
	Version             string            `json:"version"`
	Timestamp           int64             `json:"timestamp"`
	Operation           string            `json:"operation"`
	OperationParameters map[string]string `json:"operationParameters"`
	CommitVersion       int64             `json:"commitVersion"`
}

// Type implements Action.
func (CommitInfo) Type() string { return typeCommitInfo }

// defaultAddFile returns the zero-value AddFile required by the
// deserializer, with dataChange defaulted to true per spec.
func defaultAddFile() AddFile {
	return AddFile{
		PartitionValues: map[string]string{},
		Stats:           map[string]string{},
		DataChange:      true,
	}
}

func defaultRemoveFile() RemoveFile {
	return RemoveFile{
		PartitionValues: map[string]string{},
		DataChange:      true,
	}
}

func defaultMetadata() Metadata {
	return Metadata{
		Configuration:    map[string]string{},
		PartitionColumns: map[string]string{},
	}
}

func defaultProtocol() Protocol {
	return Protocol{
		ReaderFeatures: []string{},
		WriterFeatures: []string{},
	}
}

func defaultCommitInfo() CommitInfo {
	return CommitInfo{
		OperationParameters: map[string]string{},
	}
}

// serializeAction renders a into its canonical single-line textual form.
func serializeAction(a Action) ([]byte, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal %s action: %w", a.Type(), err)
	}
	// body is a JSON object; splice "type":"<discriminant>" in as the
	// first key. encoding/json has no ordered-map option, so we build the
	// line by hand: "type" followed by the variant's already-ordered body
	// with its outer braces stripped, rather than round-tripping through
	// a map (which would scatter keys alphabetically).
	typeJSON, _ := json.Marshal(a.Type())
	inner := body[1 : len(body)-1]
	if len(inner) == 0 {
		return append([]byte(`{"type":`), append(typeJSON, '}')...), nil
	}
	line := append([]byte(`{"type":`), typeJSON...)
	line = append(line, ',')
	line = append(line, inner...)
	line = append(line, '}')
	return line, nil
}

// parseAction parses one textual record into its concrete Action. The
// "type" discriminant is extracted first via gjson, avoiding a full
// json.Unmarshal into an intermediate map just to learn which struct to
// decode into.
func parseAction(line []byte) (Action, error) {
	discriminant := gjson.GetBytes(line, "type")
	if !discriminant.Exists() {
		return nil, newCorruptLogError("action line missing \"type\" field", nil)
	}
	switch discriminant.String() {
	case typeProtocol:
		a := defaultProtocol()
		if err := json.Unmarshal(line, &a); err != nil {
			return nil, newCorruptLogError("parsing protocol action", err)
		}
		return a, nil
	case typeMetadata:
		a := defaultMetadata()
		if err := json.Unmarshal(line, &a); err != nil {
			return nil, newCorruptLogError("parsing metadata action", err)
		}
		return a, nil
	case typeAdd:
		a := defaultAddFile()
		if err := json.Unmarshal(line, &a); err != nil {
			return nil, newCorruptLogError("parsing add action", err)
		}
		return a, nil
	case typeRemove:
		a := defaultRemoveFile()
		if err := json.Unmarshal(line, &a); err != nil {
			return nil, newCorruptLogError("parsing remove action", err)
		}
		return a, nil
	case typeCommitInfo:
		a := defaultCommitInfo()
		if err := json.Unmarshal(line, &a); err != nil {
			return nil, newCorruptLogError("parsing commitInfo action", err)
		}
		return a, nil
	default:
		return nil, newCorruptLogError(fmt.Sprintf("unknown action type %q", discriminant.String()), nil)
	}
}
