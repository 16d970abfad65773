package loader

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

// unpackArchive extracts filePath into dir when it is a .zip, .gz, .lz4 or
// .zst file and returns the path of the extracted file. Other files are
// returned unchanged. The archive itself is left in place.
func unpackArchive(filePath, dir string) (string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".zip":
		return unpackZipArchive(filePath, dir)
	case ".gz":
		return unpackStream(filePath, dir, func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		})
	case ".lz4":
		return unpackStream(filePath, dir, func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(lz4.NewReader(r)), nil
		})
	case ".zst":
		return unpackStream(filePath, dir, func(r io.Reader) (io.ReadCloser, error) {
			zr, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return zr.IOReadCloser(), nil
		})
	}
	return filePath, nil
}

// unpackZipArchive extracts the largest file of the archive.
func unpackZipArchive(filePath, dir string) (string, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	var largestFile *zip.File
	var largestSize uint64
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if largestFile == nil || f.UncompressedSize64 > largestSize {
			largestFile = f
			largestSize = f.UncompressedSize64
		}
	}
	if largestFile == nil {
		return "", fmt.Errorf("%s: empty zip archive", filepath.Base(filePath))
	}

	// entry paths are flattened so an archive cannot write outside dir
	destPath := filepath.Join(dir, filepath.Base(largestFile.Name))
	rc, err := largestFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	if err := writeFile(destPath, rc); err != nil {
		return "", err
	}
	return destPath, nil
}

func unpackStream(filePath, dir string, open func(io.Reader) (io.ReadCloser, error)) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	rc, err := open(file)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	base := filepath.Base(filePath)
	destPath := filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base)))
	if err := writeFile(destPath, rc); err != nil {
		return "", err
	}
	return destPath, nil
}

func writeFile(destPath string, r io.Reader) error {
	outFile, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(outFile, r); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}
