package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "muller cafe naive", Fold("Müller Café NAÏVE"))
}

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Deep Learning for the IoT", []string{"deep", "learning", "iot"}},
		{"a b c", []string{}},
		{"IEEE Access | Alice Rao", []string{"ieee", "access", "alice", "rao"}},
		{"COVID-19 in 2021", []string{"covid", "19", "2021"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Words(tt.in))
		})
	}
}

func TestTermsBigramsSkipStopWords(t *testing.T) {
	got := Terms("machine learning in the cloud", 2)
	assert.Equal(t, []string{"machine", "learning", "cloud", "machine learning", "learning cloud"}, got)
	assert.Equal(t, []string{"machine", "learning", "cloud"}, Terms("machine learning in the cloud", 0))
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.True(t, IsStopWord("system"))
	assert.False(t, IsStopWord("blockchain"))
}

func BenchmarkTerms(b *testing.B) {
	text := "Federated Learning for Privacy-Preserving Healthcare Analytics | IEEE Access | Alice Rao | Ben Li, Chen Wu | federated learning privacy healthcare"
	for i := 0; i < b.N; i++ {
		Terms(text, 2)
	}
}
