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

package database_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/aclimate/database"
)

type sprocket struct{}

func TestModelRegistryOrder(t *testing.T) {
	r := database.NewModelRegistry(
		database.Model((*gadget)(nil), 20),
		database.Model((*widget)(nil), 10),
	)
	r.Register(database.Model((*sprocket)(nil), 10))

	models := r.Models()
	require.Len(t, models, 3)
	assert.Equal(t, 10, models[0].Priority())
	assert.Equal(t, 20, models[2].Priority())

	instances := r.Instances()
	assert.IsType(t, (*widget)(nil), instances[0])
	assert.IsType(t, (*sprocket)(nil), instances[1], "ties keep registration order")
	assert.IsType(t, (*gadget)(nil), instances[2])
}

func TestLogrusLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.DebugLevel)

	logger := database.NewLogrusLogger(l)
	logger.Info("country created", "id", 7, "iso2", "CO", "dangling")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "country created", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, float64(7), entry["id"])
	assert.Equal(t, "CO", entry["iso2"])
	assert.Equal(t, "dangling", entry["extra"])

	buf.Reset()
	logger.SetLevel(database.LogLevelError)
	logger.Warn("dropped")
	assert.Empty(t, buf.String())
	logger.Error("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", database.LogLevelDebug.String())
	assert.Equal(t, "WARN", database.LogLevelWarn.String())
	assert.Equal(t, "ERROR", database.LogLevelError.String())
	assert.Equal(t, "DEBUG", database.LogLevel(42).String())
}
