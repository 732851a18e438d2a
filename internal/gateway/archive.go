package gateway

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/opencontainers/go-digest"
)

// SignatureEntryName is the archive entry holding a package's signatures.
const SignatureEntryName = ".signature.p7s"

// ArchiveInfo summarizes the contents of a .nupkg file.
type ArchiveInfo struct {
	Entries      int
	Nuspec       string
	HasSignature bool
}

// InspectArchive opens a .nupkg as a zip archive and reports whether it
// carries a signature entry.
func InspectArchive(nupkgPath string) (ArchiveInfo, error) {
	r, err := zip.OpenReader(nupkgPath)
	if err != nil {
		return ArchiveInfo{}, fmt.Errorf("failed to open %s as a package archive: %w", nupkgPath, err)
	}
	defer r.Close()

	info := ArchiveInfo{Entries: len(r.File)}
	for _, f := range r.File {
		switch {
		case f.Name == SignatureEntryName:
			info.HasSignature = true
		case path.Dir(f.Name) == "." && strings.HasSuffix(strings.ToLower(f.Name), ".nuspec"):
			info.Nuspec = f.Name
		}
	}
	return info, nil
}

// fileDigest returns the canonical digest and size of a file on disk.
func fileDigest(p string) (digest.Digest, int64, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	digester := digest.Canonical.Digester()
	n, err := io.Copy(digester.Hash(), f)
	if err != nil {
		return "", 0, err
	}
	return digester.Digest(), n, nil
}
