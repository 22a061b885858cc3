package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"

	"book-recs/internal/app"
	"book-recs/internal/embeddings"
	"book-recs/internal/llm"
	"book-recs/internal/store"
)

func newTestDeps(st store.Store, l llm.Client, e embeddings.Embedder) app.Deps {
	return app.Deps{
		Store:    st,
		LLM:      l,
		Embedder: e,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestHandleIndex(t *testing.T) {
	item := store.Item{
		ID:     "item-1",
		Title:  "Dune",
		Author: "Frank Herbert",
		Notes:  "desert planet epic",
	}

	tests := []struct {
		name    string
		payload indexTaskPayload
		setup   func(*store.MockStore, *llm.MockClient, *embeddings.MockEmbedder)
		wantErr bool
	}{
		{
			name:    "successful indexing",
			payload: indexTaskPayload{ItemID: "item-1"},
			setup: func(s *store.MockStore, l *llm.MockClient, e *embeddings.MockEmbedder) {
				s.On("Get", mock.Anything, "item-1").Return(item, nil).Once()

				l.On("Summarize", mock.Anything, "Title: Dune\nAuthor: Frank Herbert\nNotes: desert planet epic\n").
					Return("A desert planet epic.", []string{"sci-fi", "classic"}, nil).Once()

				// The embedding input carries the derived summary.
				e.On("Embed", mock.Anything, "Dune\nFrank Herbert\ndesert planet epic\nA desert planet epic.").
					Return(embeddings.Vector{0.1, 0.2, 0.3}, nil).Once()

				s.On("UpsertEmbeddingMeta", mock.Anything, mock.MatchedBy(func(meta store.EmbeddingMeta) bool {
					return meta.ItemID == "item-1" &&
						meta.Summary == "A desert planet epic." &&
						len(meta.Tags) == 2 &&
						len(meta.Embedding) == 3
				})).Return(nil).Once()
			},
			wantErr: false,
		},
		{
			name:    "sparse item skips empty fields",
			payload: indexTaskPayload{ItemID: "item-2"},
			setup: func(s *store.MockStore, l *llm.MockClient, e *embeddings.MockEmbedder) {
				s.On("Get", mock.Anything, "item-2").
					Return(store.Item{ID: "item-2", Title: "Hyperion"}, nil).Once()

				l.On("Summarize", mock.Anything, "Title: Hyperion\n").
					Return("", nil, nil).Once()

				e.On("Embed", mock.Anything, "Hyperion").
					Return(embeddings.Vector{0.5}, nil).Once()

				s.On("UpsertEmbeddingMeta", mock.Anything, mock.MatchedBy(func(meta store.EmbeddingMeta) bool {
					return meta.ItemID == "item-2" && meta.Summary == ""
				})).Return(nil).Once()
			},
			wantErr: false,
		},
		{
			name:    "empty item_id returns error",
			payload: indexTaskPayload{},
			wantErr: true,
		},
		{
			name:    "missing item propagates error",
			payload: indexTaskPayload{ItemID: "missing"},
			setup: func(s *store.MockStore, l *llm.MockClient, e *embeddings.MockEmbedder) {
				s.On("Get", mock.Anything, "missing").
					Return(store.Item{}, store.ErrItemNotFound).Once()
			},
			wantErr: true,
		},
		{
			name:    "annotator failure propagates error",
			payload: indexTaskPayload{ItemID: "item-1"},
			setup: func(s *store.MockStore, l *llm.MockClient, e *embeddings.MockEmbedder) {
				s.On("Get", mock.Anything, "item-1").Return(item, nil).Once()
				l.On("Summarize", mock.Anything, mock.Anything).
					Return("", nil, errors.New("LLM error")).Once()
			},
			wantErr: true,
		},
		{
			name:    "embedder failure propagates error",
			payload: indexTaskPayload{ItemID: "item-1"},
			setup: func(s *store.MockStore, l *llm.MockClient, e *embeddings.MockEmbedder) {
				s.On("Get", mock.Anything, "item-1").Return(item, nil).Once()
				l.On("Summarize", mock.Anything, mock.Anything).
					Return("Summary", []string{"tag"}, nil).Once()
				e.On("Embed", mock.Anything, mock.Anything).
					Return(nil, errors.New("embedding error")).Once()
			},
			wantErr: true,
		},
		{
			name:    "upsert failure propagates error",
			payload: indexTaskPayload{ItemID: "item-1"},
			setup: func(s *store.MockStore, l *llm.MockClient, e *embeddings.MockEmbedder) {
				s.On("Get", mock.Anything, "item-1").Return(item, nil).Once()
				l.On("Summarize", mock.Anything, mock.Anything).
					Return("Summary", []string{"tag"}, nil).Once()
				e.On("Embed", mock.Anything, mock.Anything).
					Return(embeddings.Vector{0.1}, nil).Once()
				s.On("UpsertEmbeddingMeta", mock.Anything, mock.Anything).
					Return(errors.New("database error")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(store.MockStore)
			mockLLM := new(llm.MockClient)
			mockEmbedder := new(embeddings.MockEmbedder)

			if tt.setup != nil {
				tt.setup(mockStore, mockLLM, mockEmbedder)
			}

			deps := newTestDeps(mockStore, mockLLM, mockEmbedder)

			err := handleIndex(context.Background(), deps, tt.payload)
			if (err != nil) != tt.wantErr {
				t.Errorf("handleIndex() error = %v, wantErr %v", err, tt.wantErr)
			}

			mockStore.AssertExpectations(t)
			mockLLM.AssertExpectations(t)
			mockEmbedder.AssertExpectations(t)
		})
	}
}
