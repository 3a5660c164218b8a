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

package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"trace":   logrus.TraceLevel,
		"DEBUG":   logrus.DebugLevel,
		" info ":  logrus.InfoLevel,
		"":        logrus.InfoLevel,
		"warning": logrus.WarnLevel,
		"warn":    logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"bogus":   logrus.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLogLevel(in), "input %q", in)
	}
}

func TestNewLoggerIsCachedByName(t *testing.T) {
	a := NewLogger("utils-test-cache")
	b := NewLogger("utils-test-cache")
	assert.Same(t, a, b)
	assert.NotSame(t, a, NewLogger("utils-test-other"))

	require.True(t, SetLoggerLevel("utils-test-cache", "error"))
	assert.Equal(t, logrus.ErrorLevel, a.GetLevel())
	assert.False(t, SetLoggerLevel("utils-test-never-created", "debug"))
}

func TestConsoleFormatter(t *testing.T) {
	f := &ConsoleFormatter{LoggerName: "DATABASE-LAYER", NameWidth: 8, NoColor: true}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "slow query",
		Data: logrus.Fields{
			"query":    "SELECT 1",
			"duration": 3 * time.Second,
			"error":    errors.New("boom"),
		},
	}
	out, err := f.Format(entry)
	require.NoError(t, err)

	line := string(out)
	assert.True(t, strings.HasPrefix(line, "2024-03-15 10:30:00.000 "), line)
	assert.Contains(t, line, "WARNING ")
	assert.Contains(t, line, fmt.Sprintf("%-6d", os.Getpid()))
	assert.Contains(t, line, " --- DATABASE : slow query")
	assert.True(t, strings.HasSuffix(line, ` duration=3s error="boom" query="SELECT 1"`+"\n"), line)
	assert.NotContains(t, line, "\x1b[")

	f.NoColor = false
	out, err = f.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), ansiYellow+"WARNING"+ansiReset)
}

func TestNewLoggerWritesToConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	prev := consoleOutput
	ConfigureOutput(&buf)
	ConfigureConsoleLogFormat("json")
	t.Cleanup(func() {
		ConfigureOutput(prev)
		ConfigureConsoleLogFormat("text")
	})

	l := NewLogger("utils-test-json")
	l.SetLevel(logrus.InfoLevel)
	l.WithField("iso2", "CO").Info("created")

	line := buf.String()
	assert.Contains(t, line, `"message":"created"`)
	assert.Contains(t, line, `"logger":"utils-test-json"`)
	assert.Contains(t, line, `"iso2":"CO"`)
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("UTILS_TEST_STRING", "  ")
	t.Setenv("UTILS_TEST_BOOL", "true")
	t.Setenv("UTILS_TEST_BAD_BOOL", "maybe")

	assert.Equal(t, "fallback", EnvDefaultString("UTILS_TEST_STRING", "fallback"))
	assert.Equal(t, "fallback", EnvDefaultString("UTILS_TEST_UNSET", "fallback"))
	assert.True(t, EnvDefaultBool("UTILS_TEST_BOOL", false))
	assert.True(t, EnvDefaultBool("UTILS_TEST_BAD_BOOL", true))
	assert.False(t, EnvDefaultBool("UTILS_TEST_UNSET", false))
}
