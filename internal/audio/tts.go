package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"maitje/internal/content"
)

// DefaultTTSURL is Google Translate's text-to-speech endpoint (no API key needed)
const DefaultTTSURL = "https://translate.google.com/translate_tts"

const ttsRequestTimeout = 10 * time.Second

// ErrInvalidWord is returned for words outside the English vocabulary or
// that cannot be cached safely
var ErrInvalidWord = errors.New("invalid word")

// TTSService fetches English pronunciations and caches them as MP3 files
type TTSService struct {
	audioDir string
	baseURL  string
	lang     string
	client   *http.Client
	words    map[string]bool

	// serializes downloads; cache hits skip it
	downloadMu sync.Mutex
}

// NewTTSService creates a new TTS service writing to audioDir
func NewTTSService(audioDir, baseURL string) *TTSService {
	if baseURL == "" {
		baseURL = DefaultTTSURL
	}
	return &TTSService{
		audioDir: audioDir,
		baseURL:  baseURL,
		lang:     "en",
		client:   &http.Client{Timeout: ttsRequestTimeout},
		words:    vocabularyWords(),
	}
}

func vocabularyWords() map[string]bool {
	words := make(map[string]bool)
	for level := content.MinLevel; level <= content.MaxLevel; level++ {
		for _, w := range content.Vocabulary(level) {
			words[strings.ToLower(w.English)] = true
		}
	}
	return words
}

// SanitizeWord lowercases word and checks it only holds letters, spaces,
// hyphens and apostrophes
func SanitizeWord(word string) (string, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || len(word) > 64 {
		return "", ErrInvalidWord
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' {
			return "", ErrInvalidWord
		}
	}
	return word, nil
}

// AudioFile returns the path of the cached MP3 for a vocabulary word,
// downloading it first when it is not cached yet
func (s *TTSService) AudioFile(ctx context.Context, word string) (string, error) {
	word, err := SanitizeWord(word)
	if err != nil {
		return "", err
	}
	if !s.words[word] {
		return "", ErrInvalidWord
	}

	filename := "word_" + strings.NewReplacer(" ", "_", "'", "").Replace(word) + ".mp3"
	path := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	s.downloadMu.Lock()
	defer s.downloadMu.Unlock()

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}
	if err := s.download(ctx, word, path); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}
	return path, nil
}

func (s *TTSService) download(ctx context.Context, text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", s.lang)
	params.Set("client", "tw-ob")
	params.Set("textlen", strconv.Itoa(len(text)))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Google rejects requests without a browser user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Write to a temp file first so a failed download never leaves a partial MP3 in the cache
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), "tts-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return os.Rename(tmp.Name(), outputPath)
}

// CachedFiles returns the names of all cached MP3 files
func (s *TTSService) CachedFiles() ([]string, error) {
	files, err := os.ReadDir(s.audioDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audio directory: %w", err)
	}

	var audioFiles []string
	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".mp3" {
			audioFiles = append(audioFiles, file.Name())
		}
	}
	return audioFiles, nil
}
