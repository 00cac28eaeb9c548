package validators

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormValueDistinguishesAbsentFromEmpty(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("description", ""))
	require.NoError(t, writer.WriteField("name", "Widget"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	value, ok := FormValue(req, "name")
	require.True(t, ok)
	require.Equal(t, "Widget", value)

	value, ok = FormValue(req, "description")
	require.True(t, ok)
	require.Empty(t, value)

	_, ok = FormValue(req, "price")
	require.False(t, ok)
}

func TestParsePriceCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "9.99", want: 999},
		{in: "10", want: 1000},
		{in: "0", want: 0},
		{in: "0.5", want: 50},
		{in: " 12.30 ", want: 1230},
		{in: "9.999", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParsePriceCents(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseStock(t *testing.T) {
	got, err := ParseStock("12")
	require.NoError(t, err)
	require.Equal(t, 12, got)

	_, err = ParseStock("-1")
	require.Error(t, err)

	_, err = ParseStock("1.5")
	require.Error(t, err)

	_, err = ParseStock("")
	require.Error(t, err)
}
