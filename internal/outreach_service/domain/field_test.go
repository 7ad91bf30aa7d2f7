package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderMatchers(t *testing.T) {
	assert.True(t, IsNameHeader("Nome"))
	assert.True(t, IsNameHeader("NOME COMPLETO"))
	assert.True(t, IsNameHeader("Customer Name"))
	assert.False(t, IsNameHeader("Cidade"))

	assert.True(t, IsPhoneHeader("Telefone"))
	assert.True(t, IsPhoneHeader("telephone"))
	assert.True(t, IsPhoneHeader("Celular / WhatsApp"))
	assert.True(t, IsPhoneHeader("Mobile"))
	assert.False(t, IsPhoneHeader("Email"))

	assert.True(t, IsDateHeader("Data Pagamento"))
	assert.True(t, IsDateHeader("Due Date"))
	assert.False(t, IsDateHeader("Cidade"))

	assert.True(t, IsVolumeHeader("Volume"))
	assert.True(t, IsVolumeHeader("Valor Total"))
	assert.True(t, IsVolumeHeader("amount"))
	assert.False(t, IsVolumeHeader("Nome"))

	assert.True(t, IsFollowUpHeader("Follow-up"))
	assert.True(t, IsFollowUpHeader("Acompanhamento"))
	assert.False(t, IsFollowUpHeader("Status"))
}

func TestSerialToDate(t *testing.T) {
	// 45292 is 2024-01-01 in xlsx serial days.
	got := SerialToDate(45292)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"42", 42, true},
		{"1234.56", 1234.56, true},
		{"1.234,56", 1234.56, true},
		{"99,90", 99.9, true},
		{"R$ 1.234,56", 1234.56, true},
		{"-1.000,00", -1000, true},
		{"SP", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestClassifyField(t *testing.T) {
	t.Run("date header with serial value", func(t *testing.T) {
		f := ClassifyField("Data Pagamento", "45292")
		require.Equal(t, FieldDate, f.Kind)
		assert.Equal(t, "01/01/2024", f.DisplayValue())
	})

	t.Run("date header with formatted value", func(t *testing.T) {
		f := ClassifyField("Data Pagamento", "05/03/2024")
		require.Equal(t, FieldDate, f.Kind)
		assert.Equal(t, "05/03/2024", f.DisplayValue())
	})

	t.Run("numeric value", func(t *testing.T) {
		f := ClassifyField("Valor", "1.234,56")
		require.Equal(t, FieldNumber, f.Kind)
		assert.InDelta(t, 1234.56, f.Number, 1e-9)
		assert.Equal(t, "1234.56", f.DisplayValue())
	})

	t.Run("plain text", func(t *testing.T) {
		f := ClassifyField("Cidade", "São Paulo")
		require.Equal(t, FieldText, f.Kind)
		assert.Equal(t, "São Paulo", f.DisplayValue())
	})

	t.Run("date header with unparsable value stays text", func(t *testing.T) {
		f := ClassifyField("Data Pagamento", "em breve")
		assert.Equal(t, FieldText, f.Kind)
	})
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", FormatBRL(1234.56))
	assert.Equal(t, "R$ 99,90", FormatBRL(99.9))
	assert.Equal(t, "R$ 1.000.000,00", FormatBRL(1000000))
	assert.Equal(t, "R$ 0,00", FormatBRL(0))
	assert.Equal(t, "-R$ 12,50", FormatBRL(-12.5))
}
