/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/uptrace/bun"
)

var seedOrderPattern = regexp.MustCompile(`^(\d+)_`)

// SeedRunner executes the seed SQL files under root: every file in common/
// first, then environments/<environment>/, each group ordered by its NNN_ prefix.
// Files may reference {{.ENVIRONMENT}} and any process environment variable.
type SeedRunner struct {
	root        string
	environment string
	logger      Logger
}

// SQLFileInfo describes a SQL file to be executed.
type SQLFileInfo struct {
	Path        string
	Name        string
	Order       int
	Environment string
}

// ExecutionResult contains the outcome of executing a single SQL file.
type ExecutionResult struct {
	File         string
	Duration     time.Duration
	RowsAffected int64
}

func NewSeedRunner(cfg SeedConfig, logger Logger) *SeedRunner {
	if logger == nil {
		logger = NopLogger()
	}
	return &SeedRunner{root: cfg.Filepath, environment: cfg.Environment, logger: logger}
}

// Run executes every seed file with db, stopping at the first failure.
func (s *SeedRunner) Run(ctx context.Context, db bun.IDB) ([]ExecutionResult, error) {
	if s.root == "" {
		return nil, nil
	}
	files, err := s.Files()
	if err != nil {
		return nil, err
	}
	s.logger.Info("Starting SQL seed", "environment", s.environment, "sql_path", s.root, "files", len(files))

	results := make([]ExecutionResult, 0, len(files))
	for _, file := range files {
		res, err := s.executeFile(ctx, db, file)
		if err != nil {
			s.logger.Error("SQL file execution failed", "file", file.Path, "error", err)
			return results, fmt.Errorf("SQL file execution failed %s: %w", file.Path, err)
		}
		s.logger.Info("SQL file executed successfully", "file", res.File, "duration", res.Duration, "rows_affected", res.RowsAffected)
		results = append(results, res)
	}
	return results, nil
}

// Files returns the seed files in execution order.
func (s *SeedRunner) Files() ([]SQLFileInfo, error) {
	var files []SQLFileInfo

	commonPath := filepath.Join(s.root, "common")
	if _, err := os.Stat(commonPath); err == nil {
		common, err := filesIn(commonPath, "common")
		if err != nil {
			return nil, fmt.Errorf("failed to get common SQL files: %w", err)
		}
		files = append(files, common...)
	}

	if s.environment != "" {
		envPath := filepath.Join(s.root, "environments", s.environment)
		if _, err := os.Stat(envPath); err == nil {
			envFiles, err := filesIn(envPath, s.environment)
			if err != nil {
				return nil, fmt.Errorf("failed to get environment SQL files: %w", err)
			}
			files = append(files, envFiles...)
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Environment != files[j].Environment {
			return files[i].Environment == "common"
		}
		if files[i].Order != files[j].Order {
			return files[i].Order < files[j].Order
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func filesIn(dir, environment string) ([]SQLFileInfo, error) {
	var files []SQLFileInfo
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			return nil
		}
		files = append(files, SQLFileInfo{
			Path:        path,
			Name:        d.Name(),
			Order:       fileOrder(d.Name()),
			Environment: environment,
		})
		return nil
	})
	return files, err
}

func fileOrder(filename string) int {
	m := seedOrderPattern.FindStringSubmatch(filename)
	if len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 999
}

func (s *SeedRunner) executeFile(ctx context.Context, db bun.IDB, file SQLFileInfo) (ExecutionResult, error) {
	start := time.Now()
	result := ExecutionResult{File: file.Path}

	content, err := os.ReadFile(file.Path)
	if err != nil {
		return result, fmt.Errorf("failed to read file: %w", err)
	}
	rendered, err := s.render(string(content))
	if err != nil {
		return result, err
	}

	for _, stmt := range SplitSQLStatements(rendered) {
		res, err := db.ExecContext(ctx, stmt)
		if err != nil {
			return result, fmt.Errorf("failed to execute SQL statement: %s, error: %w", stmt, err)
		}
		n, _ := res.RowsAffected()
		result.RowsAffected += n
	}
	result.Duration = time.Since(start)
	return result, nil
}

func (s *SeedRunner) render(content string) (string, error) {
	if !strings.Contains(content, "{{") {
		return content, nil
	}
	tmpl, err := template.New("sql").Option("missingkey=zero").Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	vars["ENVIRONMENT"] = s.environment

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// SplitSQLStatements splits a script on statement-ending semicolons. Blank
// lines and whole-line "--" comments are dropped.
func SplitSQLStatements(content string) []string {
	var statements []string
	var current strings.Builder

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}
