package advisor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadReferenceDocuments reads every PDF in dir into memory. It runs once
// at process start; an unreadable directory or file is a startup failure.
// An empty directory is allowed, the advisor just answers ungrounded.
func LoadReferenceDocuments(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read reference directory: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read reference document %s: %w", entry.Name(), err)
		}

		docs = append(docs, Document{
			Name:     entry.Name(),
			MIMEType: "application/pdf",
			Data:     data,
		})
	}

	return docs, nil
}
