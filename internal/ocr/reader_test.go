package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/Lllllllleong/documentextraction/internal/llm"
	"github.com/Lllllllleong/documentextraction/internal/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPages_InOrder(t *testing.T) {
	model := llmtest.New().On(PagePrompt, "بطاقة تحقيق الشخصية")
	r := NewReader(model)

	texts, err := r.ReadPages(context.Background(), []string{"/tmp/page_1.jpg", "/tmp/page_2.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"بطاقة تحقيق الشخصية", "بطاقة تحقيق الشخصية"}, texts)
	assert.Equal(t, []string{"/tmp/page_1.jpg", "/tmp/page_2.jpg"}, model.Uploaded)
	assert.Equal(t, [][]string{{"page_1.jpg"}, {"page_2.jpg"}}, model.Attached)
	assert.Equal(t, []string{"page_1.jpg", "page_2.jpg"}, model.Released, "uploaded pages are deleted after use")
}

func TestReadPage_Refusal(t *testing.T) {
	model := llmtest.New().On(PagePrompt, "I cannot provide a transcription of identity documents.")
	_, err := NewReader(model).ReadPage(context.Background(), "/tmp/page_1.jpg")
	assert.ErrorIs(t, err, llm.ErrRefusal)
	assert.Equal(t, []string{"page_1.jpg"}, model.Released)
}

func TestReadPage_UploadError(t *testing.T) {
	model := llmtest.New()
	model.UploadErr = errors.New("quota exceeded")
	_, err := NewReader(model).ReadPage(context.Background(), "/tmp/page_1.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Empty(t, model.Prompts)
	assert.Empty(t, model.Released)
}
