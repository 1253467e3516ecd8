package database

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func sqlOf(s string) func() (string, int64) {
	return func() (string, int64) { return s, 1 }
}

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(zerolog.New(&buf))
	ctx := context.Background()

	l.Trace(ctx, time.Now(), sqlOf("SELECT fast"), nil)
	assert.Empty(t, buf.String())

	l.Trace(ctx, time.Now(), sqlOf("SELECT missing"), gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(ctx, time.Now(), sqlOf("INSERT broken"), errors.New("constraint"))
	assert.Contains(t, buf.String(), "INSERT broken")
	buf.Reset()

	l.Trace(ctx, time.Now().Add(-time.Second), sqlOf("SELECT slow"), nil)
	assert.Contains(t, buf.String(), "Slow query")
}

func TestGormLogger_Silent(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(zerolog.New(&buf)).LogMode(gormlogger.Silent)

	l.Trace(context.Background(), time.Now(), sqlOf("INSERT broken"), errors.New("constraint"))
	l.Error(context.Background(), "boom")

	assert.Empty(t, buf.String())
}
