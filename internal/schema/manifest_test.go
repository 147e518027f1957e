package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const sessionManifest = `
description = "S3 client session"

field "region" {
  type        = string
  description = "AWS region"
  default     = "eu-west-1"
}

field "endpoint" {
  type     = string
  optional = true
}

field "bucket" {
  type = string
}

field "retry" {
  description = "Retry policy"

  field "attempts" {
    type    = int
    default = 3
  }
}
`

func TestParseHCL(t *testing.T) {
	s, diags := ParseHCL([]byte(sessionManifest), "session.hcl")
	require.False(t, diags.HasErrors(), diags.Error())

	assert.Equal(t, "S3 client session", s.Description())
	root := s.Root()
	require.NotNil(t, root)
	assert.Equal(t, KindObject, root.Kind)
	assert.Equal(t, []string{"bucket", "endpoint", "region", "retry"}, root.FieldNames())

	assert.Equal(t, "AWS region", root.Fields["region"].Description)
	assert.True(t, root.Fields["endpoint"].Optional)
	assert.True(t, root.Fields["bucket"].Required())
	assert.Equal(t, "Retry policy", root.Fields["retry"].Description)

	got, err := Validate(s, cty.ObjectVal(map[string]cty.Value{"bucket": cty.StringVal("assets")}))
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", got.GetAttr("region").AsString())
	assert.True(t, got.GetAttr("retry").GetAttr("attempts").RawEquals(cty.NumberIntVal(3)))
	assert.True(t, got.GetAttr("endpoint").IsNull())
}

func TestParseHCL_RootType(t *testing.T) {
	s, diags := ParseHCL([]byte(`type = list(string)`), "root.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	assert.Equal(t, "list(string)", s.String())
}

func TestParseHCL_Empty(t *testing.T) {
	s, diags := ParseHCL([]byte(`description = "no configuration"`), "empty.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	assert.True(t, s.IsEmpty())
	assert.Equal(t, "no configuration", s.Description())
}

func TestParseHCL_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		src         string
		wantSummary string
	}{
		{
			name:        "missing type",
			src:         `field "a" {}`,
			wantSummary: "Missing 'type' attribute",
		},
		{
			name:        "duplicate field",
			src:         "field \"a\" {\n  type = string\n}\nfield \"a\" {\n  type = int\n}\n",
			wantSummary: "Duplicate field definition",
		},
		{
			name:        "conflicting field",
			src:         "field \"a\" {\n  type = string\n  field \"b\" {\n    type = int\n  }\n}\n",
			wantSummary: "Conflicting field declaration",
		},
		{
			name:        "conflicting root",
			src:         "type = string\nfield \"a\" {\n  type = int\n}\n",
			wantSummary: "Conflicting schema declaration",
		},
		{
			name:        "invalid default",
			src:         "field \"a\" {\n  type = int\n  default = \"x\"\n}\n",
			wantSummary: "Invalid default value type",
		},
		{
			name:        "invalid type",
			src:         "field \"a\" {\n  type = float\n}\n",
			wantSummary: "Invalid type expression",
		},
		{
			name:        "unexpected attribute",
			src:         "field \"a\" {\n  type = int\n  colour = \"red\"\n}\n",
			wantSummary: "Unsupported argument",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, diags := ParseHCL([]byte(tc.src), "bad.hcl")
			require.True(t, diags.HasErrors())
			assert.Equal(t, tc.wantSummary, diags[0].Summary)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sessionManifest), 0o644))

	s, diags := LoadFile(path)
	require.False(t, diags.HasErrors(), diags.Error())
	assert.Equal(t, "S3 client session", s.Description())

	_, diags = LoadFile(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.True(t, diags.HasErrors())
}
