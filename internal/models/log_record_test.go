package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogRecord_DecodedProfile(t *testing.T) {
	rec := LogRecord{Profile: `{"name":"Jane Roe","purpose":"data exfiltration"}`}
	assert.Equal(t, map[string]string{"name": "Jane Roe", "purpose": "data exfiltration"}, rec.DecodedProfile())

	assert.Nil(t, LogRecord{}.DecodedProfile())
	assert.Nil(t, LogRecord{Profile: "{not json"}.DecodedProfile())
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "logs", LogRecord{}.TableName())
	assert.Equal(t, "blocklist", BlocklistEntry{}.TableName())
}
