package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-as1100/infrastructure/logging"
	"github.com/ahrav/go-as1100/infrastructure/store"
	"github.com/ahrav/go-as1100/internal/application"
	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/ports"
)

// errRejected is returned by validate --strict when a drawing does not
// reach the global threshold. main maps it to exit status 2.
var errRejected = errors.New("drawing rejected")

func newLogger(w io.Writer, flags *globalFlags) (ports.Logger, error) {
	logger, err := logging.NewStdLogger(logging.Options{Output: w, JSON: flags.logJSON})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// loadRegistry loads the rubric named by --rubric, or the built-in one.
func loadRegistry(flags *globalFlags) (*application.Registry, error) {
	loader, err := application.NewRubricLoader(application.NewDefaultValidatorFactoryRegistry())
	if err != nil {
		return nil, err
	}
	if flags.rubric == "" {
		return loader.LoadDefault()
	}
	return loader.LoadFromFile(flags.rubric)
}

// openStore opens the report database named by --db.
func openStore(flags *globalFlags) (ports.ReportStore, error) {
	if flags.db == "" {
		return nil, fmt.Errorf("--db is required")
	}
	s, err := store.NewSQLiteReportStore(flags.db)
	if err != nil {
		return nil, fmt.Errorf("open report store: %w", err)
	}
	return s, nil
}

// decodeFile reads a JSON or YAML document into v, choosing the format
// from the file extension. "-" reads JSON from stdin. Unknown keys are
// rejected in both formats.
func decodeFile(path string, stdin io.Reader, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return nil
}

func readDrawing(path string, stdin io.Reader) (*domain.Drawing, error) {
	var spec domain.DrawingSpec
	if err := decodeFile(path, stdin, &spec); err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return domain.NewDrawing(spec), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
