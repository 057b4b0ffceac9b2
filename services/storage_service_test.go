package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *StorageService {
	t.Helper()
	store, err := NewStorageService(t.TempDir())
	require.NoError(t, err)
	store.now = func() time.Time {
		return time.Date(2025, 1, 15, 9, 30, 12, 0, time.UTC)
	}
	return store
}

func TestSaveAndOpenPDF(t *testing.T) {
	store := newTestStore(t)
	content := []byte("%PDF-1.4 fake content")

	stored, err := store.SavePDF(content, "report.pdf")
	require.NoError(t, err)

	assert.Equal(t, "pdfs/20250115_093012_report.pdf", stored.StorageKey)
	assert.Equal(t, "report.pdf", stored.FileName)
	assert.Equal(t, int64(len(content)), stored.FileSize)

	readBack, err := store.OpenPDF(stored.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, content, readBack)
}

func TestListPDFs(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SavePDF([]byte("a"), "first.pdf")
	require.NoError(t, err)

	pdfs, err := store.ListPDFs()
	require.NoError(t, err)
	require.Len(t, pdfs, 1)
	assert.Equal(t, "first.pdf", pdfs[0].FileName)
	assert.Equal(t, "pdfs/20250115_093012_first.pdf", pdfs[0].StorageKey)
}

func TestDeletePDF(t *testing.T) {
	store := newTestStore(t)

	stored, err := store.SavePDF([]byte("a"), "doomed.pdf")
	require.NoError(t, err)

	require.NoError(t, store.DeletePDF(stored.StorageKey))

	_, err = store.OpenPDF(stored.StorageKey)
	assert.Error(t, err)

	pdfs, err := store.ListPDFs()
	require.NoError(t, err)
	assert.Empty(t, pdfs)
}

func TestOpenPDFRejectsPathTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.OpenPDF("../../../etc/passwd")
	assert.Error(t, err)
}

func TestSavePDFStripsDirectoryFromFileName(t *testing.T) {
	store := newTestStore(t)

	stored, err := store.SavePDF([]byte("a"), "../sneaky.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdfs/20250115_093012_sneaky.pdf", stored.StorageKey)
}

func TestOriginalFileName(t *testing.T) {
	assert.Equal(t, "report.pdf", originalFileName("20250115_093012_report.pdf"))
	assert.Equal(t, "with_underscores.pdf", originalFileName("20250115_093012_with_underscores.pdf"))
	assert.Equal(t, "plain.pdf", originalFileName("plain.pdf"))
}
