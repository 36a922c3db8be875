package template

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/recera/vex/internal/cache"
)

// generatorVersion is part of every cache key; bump it when generated code
// changes shape
const generatorVersion = "vex-gen-1"

// Result describes one processed file
type Result struct {
	Input   string
	Output  string
	Cached  bool // output came from the cache
	Written bool // output file changed on disk
}

// Processor expands .vex files on a filesystem
type Processor struct {
	Fs       afero.Fs
	Expander *Expander
	Cache    *cache.Cache // optional
	Logger   *slog.Logger
}

// NewProcessor creates a processor without a cache
func NewProcessor(fs afero.Fs, exp *Expander) *Processor {
	return &Processor{Fs: fs, Expander: exp, Logger: slog.Default()}
}

// OutputPath maps a .vex file to the Go file generated from it
func OutputPath(filename string) string {
	return strings.TrimSuffix(filename, ".vex") + ".vex.go"
}

// ProcessFile generates the Go file for one .vex file. The output is only
// rewritten when its content changes.
func (p *Processor) ProcessFile(filename string) (Result, error) {
	res := Result{Input: filename, Output: OutputPath(filename)}

	src, err := afero.ReadFile(p.Fs, filename)
	if err != nil {
		return res, errors.Wrap(err, "failed to read file")
	}

	key := cache.Key(filename, string(src), p.fingerprint())
	code, hit := p.cached(key)
	if !hit {
		code, err = p.Expander.Expand(filename, src)
		if err != nil {
			return res, err
		}
		if p.Cache != nil {
			if err := p.Cache.Put(key, filename, code); err != nil {
				p.logger().Warn("cache write failed", "file", filename, "error", err)
			}
		}
	}
	res.Cached = hit

	existing, err := afero.ReadFile(p.Fs, res.Output)
	if err == nil && bytes.Equal(existing, code) {
		return res, nil
	}
	if err := afero.WriteFile(p.Fs, res.Output, code, 0644); err != nil {
		return res, errors.Wrap(err, "failed to write output file")
	}
	res.Written = true

	p.logger().Debug("generated", "input", filename, "output", res.Output, "cached", hit)
	return res, nil
}

// Check parses and expands a file without writing anything
func (p *Processor) Check(filename string) error {
	src, err := afero.ReadFile(p.Fs, filename)
	if err != nil {
		return errors.Wrap(err, "failed to read file")
	}
	_, err = p.Expander.Expand(filename, src)
	return err
}

// ProcessDirectory processes every .vex file under dir. A failing file does
// not stop the others; all failures are returned together.
func (p *Processor) ProcessDirectory(dir string) ([]Result, error) {
	files, err := p.FindFiles(dir)
	if err != nil {
		return nil, err
	}
	return p.ProcessFiles(files)
}

// ProcessFiles processes the given files in order
func (p *Processor) ProcessFiles(files []string) ([]Result, error) {
	var results []Result
	var result *multierror.Error
	for _, file := range files {
		res, err := p.ProcessFile(file)
		if err != nil {
			result = multierror.Append(result, FileError{File: file, Err: err})
			continue
		}
		results = append(results, res)
	}
	if p.Cache != nil {
		if err := p.Cache.Flush(); err != nil {
			p.logger().Warn("cache index write failed", "error", err)
		}
	}
	return results, result.ErrorOrNil()
}

// CheckFiles checks the given files and returns all failures together
func (p *Processor) CheckFiles(files []string) error {
	var result *multierror.Error
	for _, file := range files {
		if err := p.Check(file); err != nil {
			result = multierror.Append(result, FileError{File: file, Err: err})
		}
	}
	return result.ErrorOrNil()
}

// FindFiles lists the .vex files under dir, skipping directories the go
// tool ignores
func (p *Processor) FindFiles(dir string) ([]string, error) {
	var files []string
	err := afero.Walk(p.Fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && SkipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".vex") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to find template files")
	}
	sort.Strings(files)
	return files, nil
}

// FileError attaches the failing file to an error
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string {
	if _, ok := AsSyntaxError(e.Err); ok {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

func (p *Processor) cached(key string) ([]byte, bool) {
	if p.Cache == nil {
		return nil, false
	}
	return p.Cache.Get(key)
}

// fingerprint captures every option that influences the output
func (p *Processor) fingerprint() string {
	e := p.Expander
	return fmt.Sprintf("%s|%s|%s|%t|%s|%s", generatorVersion,
		e.Options.BuilderPkg, e.Options.Stringer, e.Options.LineDirectives,
		e.BuilderImport, e.StringerImport)
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// SkipDir reports whether a directory is left out of file discovery.
func SkipDir(name string) bool {
	return name == "vendor" || name == "testdata" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
