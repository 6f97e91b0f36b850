package feed

import (
	"strings"
	"testing"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Menhub Resmikan Terminal</title></head>
<body>
	<header><nav>Beranda | Ekonomi | Olahraga</nav></header>
	<main>
		<article>
			<h1>Menhub Resmikan Terminal Baru di Makassar</h1>
			<p>Menteri Perhubungan Dudy Purwagandhi meresmikan terminal penumpang baru di Makassar pada Senin pagi. Terminal ini dirancang untuk melayani lonjakan penumpang selama musim mudik.</p>
			<p>"Ini adalah bukti komitmen kami untuk menghadirkan layanan transportasi yang aman dan nyaman," kata Menhub dalam sambutannya di hadapan para undangan.</p>
			<p>Pembangunan terminal berlangsung selama dua tahun dan melibatkan ratusan pekerja lokal. Fasilitas baru mencakup ruang tunggu, area parkir, dan jalur khusus penyandang disabilitas.</p>
		</article>
	</main>
	<footer><p>Hak cipta 2025</p></footer>
</body>
</html>`

func TestContentExtractorRun(t *testing.T) {
	extractor := NewContentExtractor()

	result, err := extractor.Run([]byte(articlePage), "https://example.id/berita/1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(result, "bukti komitmen kami") {
		t.Errorf("Expected extracted text to contain the article body, got %q", result)
	}
	if strings.Contains(result, "<p>") {
		t.Error("Expected plain text without markup")
	}
}

func TestContentExtractorEmptyData(t *testing.T) {
	if _, err := NewContentExtractor().Run(nil, "https://example.id"); err == nil {
		t.Error("Expected error for empty data")
	}
}

func TestNeedsExtraction(t *testing.T) {
	tests := []struct {
		name     string
		item     Item
		expected bool
	}{
		{name: "short description", item: Item{Link: "https://a.id/1", Description: "Singkat."}, expected: true},
		{name: "long content", item: Item{Link: "https://a.id/1", Content: strings.Repeat("isi berita ", 30)}, expected: false},
		{name: "long description", item: Item{Link: "https://a.id/1", Description: strings.Repeat("ringkasan ", 30)}, expected: false},
		{name: "no link", item: Item{Description: "Singkat."}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsExtraction(tt.item); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
