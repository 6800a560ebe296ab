package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/residential-checks/internal/config"
)

const invoiceText = "FACTURA Nº: F-2024-015\n" +
	"Fecha: 15/04/2024\n" +
	"Cliente: Juan Pérez García\n" +
	"NIF: 71109449G\n" +
	"Total: 1.210,00 €"

func testConfig() *config.Config {
	return &config.Config{
		OCR: config.OCRConfig{
			Provider:     "native",
			DPI:          300,
			MinTextChars: 50,
		},
		Arbiter: config.ArbiterConfig{EnergySavingsFloor: 500},
		Report: config.ReportConfig{
			OutputDir: "out",
			SheetName: "Checks",
		},
		Server: config.ServerConfig{
			Port:              8080,
			MaxUploadMB:       10,
			MaxConcurrentRuns: 2,
		},
		Log: config.LogConfig{Level: "info", Format: "json"},
	}
}

// calcSheetBytes returns a workbook with the client in A1 and the action row
// in O12:U12.
func calcSheetBytes(t *testing.T) []byte {
	t.Helper()
	f := xlsx.NewFile()
	s, err := f.AddSheet("Hoja1")
	require.NoError(t, err)
	for r := 0; r < 12; r++ {
		row := s.AddRow()
		cells := make([]string, 21)
		switch r {
		case 0:
			cells[0] = "Client : MARIA GARCIA LOPEZ (Valladolid)"
		case 11:
			copy(cells[14:], []string{"RES020", "1", "0,9", "0,35", "120,50", "D2", "9500"})
		}
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

// writeProject lays out a project folder with an invoice and a calculation
// sheet and returns its path.
func writeProject(t *testing.T, name string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "E1-3-3 FACTURA.pdf"), []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "E1-4-2 CALCULO UI RTOTAL.xlsx"), calcSheetBytes(t), 0o644))
	return root
}

// projectZIP packs the same project under folder, or flat when folder is
// empty.
func projectZIP(t *testing.T, folder string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name string, data []byte) {
		if folder != "" {
			name = folder + "/" + name
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	add("E1-3-3 FACTURA.pdf", []byte("%PDF-1.4"))
	add("E1-4-2 CALCULO UI RTOTAL.xlsx", calcSheetBytes(t))
	add("notes.txt", []byte("ignored"))
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
