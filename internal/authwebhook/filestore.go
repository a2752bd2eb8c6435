package authwebhook

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore is an Authority backed by a known-tokens CSV file, one record
// per identity: token,username,uid,"group1,group2".
//
// The file is re-read on every call; the webhook authenticator is the other
// reader and the convergence pass is the only writer on this node.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore at path. The file is created on first
// mint.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the known-tokens file path.
func (s *FileStore) Path() string {
	return s.path
}

type record struct {
	token    string
	username string
	uid      string
	groups   []string
}

// CreateToken returns the token for username, minting and persisting a new
// record if the identity has none yet.
func (s *FileStore) CreateToken(uid, username string, groups []string) (string, error) {
	records, err := s.load()
	if err != nil {
		return "", err
	}

	for _, r := range records {
		if r.username == username {
			return r.token, nil
		}
	}

	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	records = append(records, record{token: token, username: username, uid: uid, groups: groups})

	if err := s.save(records); err != nil {
		return "", err
	}
	tokensIssued.Inc()
	return token, nil
}

// GetToken returns the existing token for username, or "" when absent.
func (s *FileStore) GetToken(username string) (string, error) {
	records, err := s.load()
	if err != nil {
		return "", err
	}
	for _, r := range records {
		if r.username == username {
			return r.token, nil
		}
	}
	return "", nil
}

func (s *FileStore) load() ([]record, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open known tokens file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Records with no groups carry three fields, others four.
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse known tokens file: %w", err)
	}

	records := make([]record, 0, len(rows))
	for _, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("malformed known tokens record: %q", row)
		}
		r := record{token: row[0], username: row[1], uid: row[2]}
		if len(row) > 3 && row[3] != "" {
			r.groups = strings.Split(row[3], ",")
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *FileStore) save(records []record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create known tokens directory: %w", err)
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	for _, r := range records {
		row := []string{r.token, r.username, r.uid}
		if len(r.groups) > 0 {
			row = append(row, strings.Join(r.groups, ","))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to encode known tokens record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode known tokens file: %w", err)
	}

	if err := os.WriteFile(s.path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write known tokens file: %w", err)
	}
	return nil
}
