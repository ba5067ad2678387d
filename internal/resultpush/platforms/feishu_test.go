package platforms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFeishuAdapterPayloadAndHeader(t *testing.T) {
	var got map[string]any
	var headerSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headerSig = r.Header.Get("X-Lark-Signature")
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	adapter := NewFeishuAdapter(NewHTTPClient(time.Second))
	err := adapter.Send(context.Background(), srv.URL, "sig-1", Message{
		Title:       "Spin Result",
		Description: "The wheel lands on **17**.",
		Fields:      []Field{{Name: "Number", Value: "17", Inline: true}},
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if headerSig != "sig-1" {
		t.Fatalf("unexpected signature header: %s", headerSig)
	}
	if got["msg_type"] != "interactive" {
		t.Fatalf("unexpected msg_type: %v", got["msg_type"])
	}
	card, ok := got["card"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected card: %#v", got["card"])
	}
	header, ok := card["header"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected card header: %#v", card["header"])
	}
	title, ok := header["title"].(map[string]any)
	if !ok || title["content"] != "Spin Result" {
		t.Fatalf("unexpected card title: %#v", header["title"])
	}
	elements, ok := card["elements"].([]any)
	if !ok || len(elements) != 2 {
		t.Fatalf("expected description plus 1 field element, got %#v", card["elements"])
	}
	field, ok := elements[1].(map[string]any)
	if !ok || field["text"] != "**Number**: 17" {
		t.Fatalf("unexpected field element: %#v", elements[1])
	}
}

func TestFeishuAdapterSkipsSignatureWhenSecretEmpty(t *testing.T) {
	var sawHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["X-Lark-Signature"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	adapter := NewFeishuAdapter(NewHTTPClient(time.Second))
	if err := adapter.Send(context.Background(), srv.URL, "   ", Message{Title: "t"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if sawHeader {
		t.Fatal("expected no signature header for blank secret")
	}
}

func TestFeishuAdapterDescriptionFallsBackToContent(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	adapter := NewFeishuAdapter(NewHTTPClient(time.Second))
	if err := adapter.Send(context.Background(), srv.URL, "", Message{Title: "t", Content: "plain line"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	card := got["card"].(map[string]any)
	elements := card["elements"].([]any)
	first := elements[0].(map[string]any)
	if first["text"] != "plain line" {
		t.Fatalf("expected content fallback in first element, got %#v", first["text"])
	}
}
