package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AlexNguyen244/casebase-takehome/models"
)

// StorageService keeps the raw uploaded PDFs on the local filesystem under
// a single base directory. Storage keys look like
// "pdfs/20250115_093012_report.pdf": a UTC timestamp prefix keeps repeat
// uploads of the same file name distinct.
type StorageService struct {
	baseDir string
	now     func() time.Time
}

func NewStorageService(baseDir string) (*StorageService, error) {
	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("could not determine absolute path for storage dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(absPath, "pdfs"), 0o755); err != nil {
		return nil, fmt.Errorf("could not create storage dir: %w", err)
	}
	return &StorageService{baseDir: absPath, now: time.Now}, nil
}

// resolveKey ensures a storage key stays inside the base directory.
// This prevents path traversal (e.g. key = "../../../etc/passwd").
func (s *StorageService) resolveKey(key string) (string, error) {
	cleanPath := filepath.Join(s.baseDir, filepath.Clean("/"+key))
	if !strings.HasPrefix(cleanPath, s.baseDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return cleanPath, nil
}

// SavePDF writes the file under a fresh timestamped key and returns its
// metadata.
func (s *StorageService) SavePDF(content []byte, fileName string) (*models.StoredPDF, error) {
	timestamp := s.now().UTC().Format("20060102_150405")
	key := fmt.Sprintf("pdfs/%s_%s", timestamp, filepath.Base(fileName))

	path, err := s.resolveKey(key)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", fileName, err)
	}

	return &models.StoredPDF{
		StorageKey:   key,
		FileName:     fileName,
		FileSize:     int64(len(content)),
		LastModified: s.now().UTC(),
	}, nil
}

// ListPDFs returns metadata for every stored PDF, most recent first by key.
func (s *StorageService) ListPDFs() ([]models.StoredPDF, error) {
	dir := filepath.Join(s.baseDir, "pdfs")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage dir: %w", err)
	}

	pdfs := make([]models.StoredPDF, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		pdfs = append(pdfs, models.StoredPDF{
			StorageKey:   "pdfs/" + entry.Name(),
			FileName:     originalFileName(entry.Name()),
			FileSize:     info.Size(),
			LastModified: info.ModTime().UTC(),
		})
	}
	return pdfs, nil
}

// OpenPDF reads back the raw bytes for a stored key.
func (s *StorageService) OpenPDF(key string) ([]byte, error) {
	path, err := s.resolveKey(key)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return content, nil
}

// DeletePDF removes the stored file for a key.
func (s *StorageService) DeletePDF(key string) error {
	path, err := s.resolveKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// originalFileName strips the "20060102_150405_" prefix a key was saved
// under, falling back to the full name when the prefix is absent.
func originalFileName(stored string) string {
	parts := strings.SplitN(stored, "_", 3)
	if len(parts) == 3 && len(parts[0]) == 8 && len(parts[1]) == 6 {
		return parts[2]
	}
	return stored
}
