package tags

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = "\ufeffIdentifier,Service,Type,Region,Tag: Name,tag: owner,Tags,ARN\n" +
	"i-0abc,EC2,Instance,us-east-1,web,,1,arn:aws:ec2:us-east-1:123456789012:instance/i-0abc\n" +
	"my-bucket,S3,Bucket,us-east-1,,data-team,1\n"

func TestReadRaw(t *testing.T) {
	raws, err := ReadRaw(strings.NewReader(sampleExport))
	require.NoError(t, err)
	require.Len(t, raws, 2)

	assert.Equal(t, "Identifier", raws[0].Columns[0], "BOM stripped")
	assert.Equal(t, "i-0abc", ValueOf(raws[0], "identifier"))

	_, ok := raws[1].Get(7)
	assert.False(t, ok, "ragged row reports missing ARN as absent")
	assert.Equal(t, Sentinel, ValueOf(raws[1], "ARN"))
}

func TestReadRaw_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"blank lines", "\n\n"},
		{"bad quoting", "a,b\nx,\"y\"z\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRaw(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestWriteCanonical(t *testing.T) {
	raws, err := ReadRaw(strings.NewReader(sampleExport))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCanonical(&buf, Normalize(raws)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Identifier,Service,Type,Region,Tag: Name,Tag: Env,Tag: Purpose,Tag: Owner,Tag: EOP,Tag: Contact,Tags,ARN", lines[0])
	assert.Equal(t, "i-0abc,EC2,Instance,us-east-1,web,(not tagged),(not tagged),(not tagged),(not tagged),(not tagged),1,arn:aws:ec2:us-east-1:123456789012:instance/i-0abc", lines[1])
	assert.Equal(t, "my-bucket,S3,Bucket,us-east-1,(not tagged),(not tagged),(not tagged),data-team,(not tagged),(not tagged),1,(not tagged)", lines[2])
}

func TestNormalizeFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "raw.csv")
	dst := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(src, []byte(sampleExport), 0o644))

	records, err := NormalizeFile(src, dst)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Identifier,Service,"))
}

func TestNormalizeFile_MissingSource(t *testing.T) {
	_, err := NormalizeFile(filepath.Join(t.TempDir(), "nope.csv"), filepath.Join(t.TempDir(), "out.csv"))
	require.Error(t, err)
}
