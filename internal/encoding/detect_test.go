package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WOOWTECH/ha-finance/internal/encoding"
)

func readAll(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader(t *testing.T) {
	type testCase struct {
		name  string
		input []byte
		want  string
	}

	tests := []testCase{
		{
			name:  "UTF8Passthrough",
			input: []byte("日期;摘要;金額\n2024-03-01;咖啡;-120\n"),
			want:  "日期;摘要;金額\n2024-03-01;咖啡;-120\n",
		},
		{
			name:  "UTF8BOMStripped",
			input: append([]byte{0xEF, 0xBB, 0xBF}, "Date;Amount\n"...),
			want:  "Date;Amount\n",
		},
		{
			name:  "UTF16LE",
			input: []byte{0xFF, 0xFE, 'O', 0x00, 'K', 0x00},
			want:  "OK",
		},
		{
			name: "Windows1252",
			// "Descrição;Montante\n" with ç = 0xE7, ã = 0xE3
			input: []byte{
				'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
				'M', 'o', 'n', 't', 'a', 'n', 't', 'e', '\n',
			},
			want: "Descrição;Montante\n",
		},
		{
			name:  "Empty",
			input: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readAll(t, tt.input))
		})
	}
}

func TestNewUTF8Reader_RuneSplitAtSniffBoundary(t *testing.T) {
	// 4095 ASCII bytes followed by a 3-byte rune straddling the peek window
	input := strings.Repeat("a", 4095) + "錢"

	assert.Equal(t, input, readAll(t, []byte(input)))
}
