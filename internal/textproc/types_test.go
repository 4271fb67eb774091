package textproc_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shpitdev/text-humanizer/internal/textproc"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "empty", text: "", wantErr: true},
		{name: "spaces", text: "   ", wantErr: true},
		{name: "mixed whitespace", text: "\t\n \r\n", wantErr: true},
		{name: "text", text: "hello", wantErr: false},
		{name: "padded text", text: "  hello  ", wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := textproc.Request{Text: tt.text}.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ve *textproc.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "text", ve.Field)
		})
	}
}

func TestRequestWireShape(t *testing.T) {
	req := textproc.Request{
		Text: "  Some text ",
		Options: textproc.Options{
			AddErrors:        true,
			KeepProfessional: false,
			VocabularyLevel:  "8",
		},
	}
	b, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"text":"  Some text ","options":{"addErrors":true,"keepProfessional":false,"vocabularyLevel":"8"}}`,
		string(b))
}

func TestTransportErrorUnwrap(t *testing.T) {
	base := errors.New("connection refused")
	err := error(&textproc.TransportError{Op: "processText", Err: base})

	assert.ErrorIs(t, err, base)
	assert.Equal(t, "processText: connection refused", err.Error())
	assert.Equal(t, "transport error", (&textproc.TransportError{}).Error())
}
