package mock

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/foomo/docsite/content"
	"github.com/foomo/docsite/pkg/repo"
)

// SiteFiles a small site source
var SiteFiles = map[string]string{
	"index.md":              "---\ntitle: Home\n---\nWelcome, see [the help](help/index.md) and [about](about.md#team).\n",
	"about.md":              "# About\n\nThe team. ![logo](img/logo.png)\n",
	"help/index.md":         "---\ntitle: Help\n---\nRead the [submission guide](submit.md).\n",
	"help/submit.md":        "---\ntitle: Submitting\n---\nHow to submit a paper.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n",
	"help/old.md":           "---\ntitle: Old\nresponse:\n  status: 301\n  location: submit.md#start\n---\nmoved\n",
	"help/gone.md":          "---\ntitle: Gone\nresponse:\n  deleted: true\n---\nThis page was removed.\n",
	"img/logo.png":          "png",
	"files/paper.pdf":       "pdf",
	"_templates/page.html":  `<html><head><title>{{ .Title }}</title></head><body class="custom">{{ .Content }}</body></html>`,
	"_templates/readme.txt": "ignored",
	".gitignore":            "*.tmp",
}

// WriteSite writes SiteFiles into a temporary directory and returns it
func WriteSite(tb testing.TB) string {
	tb.Helper()
	dir := tb.TempDir()
	for name, data := range SiteFiles {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			tb.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(data), 0o600); err != nil {
			tb.Fatal(err)
		}
	}
	return dir
}

// Store a memory backed store for siteName
func Store(tb testing.TB, siteName string) *repo.Store {
	tb.Helper()
	storage, err := repo.NewMemoryStorage(context.Background())
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() { _ = storage.Close() })
	return repo.NewStore(storage, siteName)
}

// StorePage puts a built page straight into the store
func StorePage(tb testing.TB, store *repo.Store, pagePath, html string, meta *content.Metadata) {
	tb.Helper()
	ctx := context.Background()
	if err := store.StorePageContent(ctx, pagePath, []byte(html)); err != nil {
		tb.Fatal(err)
	}
	if err := store.StoreMetadata(ctx, pagePath, meta); err != nil {
		tb.Fatal(err)
	}
}
