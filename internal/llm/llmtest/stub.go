// Package llmtest provides a scripted llm.Model for tests.
package llmtest

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Lllllllleong/documentextraction/internal/llm"
)

// Response is returned for any prompt containing Match. When File is set the
// call must also attach a file of that name.
type Response struct {
	Match string
	File  string
	Text  string
	Err   error
}

// StubModel answers prompts from a list of scripted responses, first match
// wins, and records every call.
type StubModel struct {
	mu        sync.Mutex
	responses []Response

	UploadErr error
	Uploaded  []string
	Released  []string
	Prompts   []string
	Attached  [][]string
}

func New(responses ...Response) *StubModel {
	return &StubModel{responses: responses}
}

// On appends a scripted response.
func (m *StubModel) On(match, text string) *StubModel {
	return m.add(Response{Match: match, Text: text})
}

// OnFile appends a response for prompts containing match sent with the named file.
func (m *StubModel) OnFile(match, file, text string) *StubModel {
	return m.add(Response{Match: match, File: file, Text: text})
}

func (m *StubModel) add(r Response) *StubModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, r)
	return m
}

func (m *StubModel) UploadFile(_ context.Context, path string) (*llm.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return nil, m.UploadErr
	}
	m.Uploaded = append(m.Uploaded, path)
	return &llm.File{
		Name:     filepath.Base(path),
		URI:      "stub://" + filepath.Base(path),
		MIMEType: llm.MIMETypeFor(path),
	}, nil
}

func (m *StubModel) GenerateText(_ context.Context, prompt string, files ...*llm.File) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	m.Attached = append(m.Attached, names)

	for _, r := range m.responses {
		if strings.Contains(prompt, r.Match) && (r.File == "" || slices.Contains(names, r.File)) {
			return r.Text, r.Err
		}
	}
	return "", fmt.Errorf("llmtest: no scripted response for prompt %q", truncate(prompt, 80))
}

func (m *StubModel) Release(_ context.Context, file *llm.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Released = append(m.Released, file.Name)
	return nil
}

// PromptsContaining returns the recorded prompts that contain substr.
func (m *StubModel) PromptsContaining(substr string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, p := range m.Prompts {
		if strings.Contains(p, substr) {
			out = append(out, p)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
