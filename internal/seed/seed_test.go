package seed

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
)

type stubWriter struct {
	ids []string
	err error
}

func (s *stubWriter) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.ids = append(s.ids, p.ID)
	return &p, nil
}

func TestApply(t *testing.T) {
	w := &stubWriter{}
	if err := Apply(context.Background(), w); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(w.ids) != len(Products) || w.ids[0] != "880RR" {
		t.Fatalf("unexpected upserts %v", w.ids)
	}
	for _, p := range Products {
		if p.Category == "" || p.Name == "" || p.PriceCents <= 0 {
			t.Fatalf("incomplete demo product %+v", p)
		}
	}
}

func TestApply_StopsOnError(t *testing.T) {
	w := &stubWriter{err: errors.New("boom")}
	if err := Apply(context.Background(), w); err == nil {
		t.Fatalf("expected error")
	}
}
