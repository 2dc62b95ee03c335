package docgen

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Converter turns a populated DOCX into a PDF.
type Converter interface {
	Convert(ctx context.Context, docxPath, pdfPath string) error
}

// NewConverter returns the converter named by kind ("native" or "libreoffice").
func NewConverter(kind, libreOfficePath string) (Converter, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "native":
		return NewNativeConverter(), nil
	case "libreoffice", "soffice":
		binary, err := lookupLibreOfficeBinary(libreOfficePath)
		if err != nil {
			return nil, err
		}
		return &LibreOfficeConverter{Binary: binary}, nil
	}
	return nil, fmt.Errorf("unknown converter %q", kind)
}

// LibreOfficeConverter shells out to a headless soffice with a throwaway profile.
type LibreOfficeConverter struct {
	Binary string
}

func (c *LibreOfficeConverter) Convert(ctx context.Context, docxPath, pdfPath string) error {
	tmpDir, err := os.MkdirTemp("", "rkive-convert-")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	profileDir := filepath.Join(tmpDir, "lo-profile")
	if err := os.MkdirAll(profileDir, 0o700); err != nil {
		return fmt.Errorf("failed to prepare libreoffice profile: %w", err)
	}
	profileURL, err := fileURLFromPath(profileDir)
	if err != nil {
		return fmt.Errorf("failed to prepare libreoffice profile: %w", err)
	}

	args := []string{
		fmt.Sprintf("-env:UserInstallation=%s", profileURL),
		"--headless",
		"--convert-to", "pdf:writer_pdf_Export:EmbedStandardFonts=true;EmbedFonts=true",
		"--outdir", tmpDir,
		docxPath,
	}
	cmd := exec.CommandContext(ctx, c.Binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("pdf conversion timed out: %w", ctx.Err())
		}
		return fmt.Errorf("failed to convert to pdf: %v", strings.TrimSpace(string(output)))
	}

	base := strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))
	produced := filepath.Join(tmpDir, base+".pdf")
	if err := moveFile(produced, pdfPath); err != nil {
		return fmt.Errorf("failed to read generated pdf: %w", err)
	}
	return nil
}

func lookupLibreOfficeBinary(explicit string) (string, error) {
	explicit = strings.TrimSpace(explicit)
	if explicit != "" {
		if runtime.GOOS == "windows" {
			explicit = strings.Trim(explicit, "\"")
		}

		candidate := explicit
		if !filepath.IsAbs(candidate) {
			absPath, err := filepath.Abs(candidate)
			if err != nil {
				return "", fmt.Errorf("invalid LIBREOFFICE_PATH: %w", err)
			}
			candidate = absPath
		}

		info, err := os.Stat(candidate)
		if err != nil {
			return "", fmt.Errorf("invalid LIBREOFFICE_PATH: %w", err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("LIBREOFFICE_PATH must point to the soffice executable, not a directory")
		}
		return candidate, nil
	}

	if path, err := exec.LookPath("soffice"); err == nil {
		return path, nil
	}
	if path, err := exec.LookPath("libreoffice"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("libreoffice (soffice) binary not found in PATH; set LIBREOFFICE_PATH to override")
}

func fileURLFromPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	absPath = filepath.ToSlash(absPath)
	if runtime.GOOS == "windows" && strings.HasPrefix(absPath, "//") {
		trimmed := strings.TrimPrefix(absPath, "//")
		parts := strings.SplitN(trimmed, "/", 2)
		u := &url.URL{Scheme: "file", Host: parts[0]}
		if len(parts) == 2 {
			u.Path = "/" + parts[1]
		}
		return u.String(), nil
	}
	if !strings.HasPrefix(absPath, "/") {
		absPath = "/" + absPath
	}

	u := &url.URL{Scheme: "file", Path: absPath}
	return u.String(), nil
}

// moveFile renames src to dst, copying when they sit on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
