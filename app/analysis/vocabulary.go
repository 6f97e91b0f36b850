package analysis

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoMinistryAliases = errors.New("vocabulary: at least one ministry alias is required")
	ErrNoSpeechVerbs     = errors.New("vocabulary: at least one speech verb is required")
	ErrEmptyTagRule      = errors.New("vocabulary: tag rules need both keyword and tag")
	ErrNoPrepositions    = errors.New("vocabulary: at least one location preposition is required")
)

// TagRule maps a lower-case keyword to the tag it triggers.
type TagRule struct {
	Keyword string `yaml:"keyword"`
	Tag     string `yaml:"tag"`
}

// Vocabulary is the language-specific rule data every analysis component is built from.
type Vocabulary struct {
	MinistryAliases      []string  `yaml:"ministry_aliases"`
	SpeechVerbs          []string  `yaml:"speech_verbs"`
	EventTerms           []string  `yaml:"event_terms"`
	FutureMarkers        []string  `yaml:"future_markers"`
	MonthNames           []string  `yaml:"month_names"`
	BoilerplateMarkers   []string  `yaml:"boilerplate_markers"`
	LocationPrepositions []string  `yaml:"location_prepositions"`
	Tags                 []TagRule `yaml:"tags"`

	SpeakerLabel    string `yaml:"speaker_label"`
	UnknownLocation string `yaml:"unknown_location"`

	DecodeEntities  bool `yaml:"decode_entities"`
	CanonicalQuotes bool `yaml:"canonical_quotes"`
}

// DefaultVocabulary returns the Indonesian rule set for the transport ministry.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		MinistryAliases: []string{
			"menhub",
			"menteri perhubungan",
			"kemenhub",
			"kementerian perhubungan",
			"dudy purwagandhi",
		},
		SpeechVerbs: []string{
			"kata", "ujar", "ucap", "tutur", "ungkap", "jelas", "tegas", "imbuh", "tambah", "pungkas",
			"katanya", "ujarnya", "ucapnya", "tuturnya", "ungkapnya", "jelasnya", "tegasnya",
			"mengatakan", "menjelaskan", "menegaskan", "menyampaikan", "mengungkapkan",
			"menambahkan", "menyebut", "menyebutkan", "menurut", "berharap", "meminta",
		},
		EventTerms: []string{
			"resmikan", "meresmikan", "peresmian",
			"groundbreaking", "peletakan batu pertama",
			"rapat koordinasi", "rakor",
			"kunjungan kerja", "kunker", "meninjau", "tinjau", "peninjauan",
			"hadiri", "menghadiri",
			"melepas", "pelepasan", "peluncuran", "meluncurkan", "launching",
			"penandatanganan", "upacara", "apel", "seminar", "konferensi", "forum",
			"inauguration", "coordination meeting",
		},
		FutureMarkers: []string{
			"besok", "esok", "dijadwalkan", "rencananya", "mendatang", "pekan depan",
		},
		MonthNames: []string{
			"januari", "februari", "maret", "april", "mei", "juni",
			"juli", "agustus", "september", "oktober", "november", "desember",
		},
		BoilerplateMarkers: []string{
			"baca juga", "simak juga", "lihat juga", "see also", "photo:", "foto:",
			"advertisement", "iklan", "editor:", "pewarta:",
		},
		LocationPrepositions: []string{"di", "ke"},
		Tags: []TagRule{
			{Keyword: "menhub", Tag: "Menhub"},
			{Keyword: "menteri perhubungan", Tag: "Menhub"},
			{Keyword: "dudy purwagandhi", Tag: "Menhub"},
			{Keyword: "kemenhub", Tag: "Kemenhub"},
			{Keyword: "kementerian perhubungan", Tag: "Kemenhub"},

			{Keyword: "bandara", Tag: "Udara"},
			{Keyword: "bandar udara", Tag: "Udara"},
			{Keyword: "penerbangan", Tag: "Udara"},
			{Keyword: "pesawat", Tag: "Udara"},
			{Keyword: "maskapai", Tag: "Udara"},

			{Keyword: "pelabuhan", Tag: "Laut"},
			{Keyword: "pelayaran", Tag: "Laut"},
			{Keyword: "kapal", Tag: "Laut"},
			{Keyword: "penyeberangan", Tag: "Laut"},
			{Keyword: "dermaga", Tag: "Laut"},
			{Keyword: "syahbandar", Tag: "Laut"},

			{Keyword: "kereta", Tag: "Kereta"},
			{Keyword: "perkeretaapian", Tag: "Kereta"},
			{Keyword: "stasiun", Tag: "Kereta"},
			{Keyword: "krl", Tag: "Kereta"},
			{Keyword: "lrt", Tag: "Kereta"},
			{Keyword: "mrt", Tag: "Kereta"},

			{Keyword: "terminal", Tag: "Darat"},
			{Keyword: "jalan tol", Tag: "Darat"},
			{Keyword: "lalu lintas", Tag: "Darat"},
			{Keyword: "angkutan jalan", Tag: "Darat"},
			{Keyword: "mudik", Tag: "Darat"},
			{Keyword: "angkutan barang", Tag: "Darat"},
			{Keyword: "bus antarkota", Tag: "Darat"},
			{Keyword: "transportasi darat", Tag: "Darat"},

			{Keyword: "kendaraan listrik", Tag: "Hijau"},
			{Keyword: "ramah lingkungan", Tag: "Hijau"},
			{Keyword: "emisi", Tag: "Hijau"},
			{Keyword: "energi bersih", Tag: "Hijau"},
			{Keyword: "net zero", Tag: "Hijau"},
		},
		SpeakerLabel:    "Menteri Perhubungan",
		UnknownLocation: "Lokasi tidak diketahui",
		DecodeEntities:  true,
		CanonicalQuotes: true,
	}
}

// LoadVocabulary reads a YAML file and overlays it on DefaultVocabulary.
// Lists present in the file replace the defaults; absent lists keep them.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()
	if path == "" {
		return v, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("failed to parse vocabulary YAML: %w", err)
	}

	if err := v.Validate(); err != nil {
		return Vocabulary{}, fmt.Errorf("invalid vocabulary %s: %w", path, err)
	}

	return v, nil
}

func (v Vocabulary) Validate() error {
	if len(nonEmpty(v.MinistryAliases)) == 0 {
		return ErrNoMinistryAliases
	}
	if len(nonEmpty(v.SpeechVerbs)) == 0 {
		return ErrNoSpeechVerbs
	}
	if len(nonEmpty(v.LocationPrepositions)) == 0 {
		return ErrNoPrepositions
	}

	for i, rule := range v.Tags {
		if rule.Keyword == "" || rule.Tag == "" {
			return fmt.Errorf("tag rule at index %d: %w", i, ErrEmptyTagRule)
		}
	}

	return nil
}
