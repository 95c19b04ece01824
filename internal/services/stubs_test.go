package services

import (
	"context"
	"errors"
	"sync"
)

type stubTranslator struct{}

func (stubTranslator) Translate(lang string, key string) string {
	return lang + ":" + key
}

type stubCredentials struct {
	secret  string
	present bool
	loadOK  bool
}

func (stub *stubCredentials) Load() (string, bool) {
	return stub.secret, stub.loadOK
}

func (stub *stubCredentials) Present() bool {
	return stub.present
}

type stubGenerator struct {
	text     string
	jsonText string
	err      error
	pingErr  error

	mu      sync.Mutex
	prompts []string
}

func (stub *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	stub.record(prompt)
	return stub.text, stub.err
}

func (stub *stubGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	stub.record(prompt)
	return stub.jsonText, stub.err
}

func (stub *stubGenerator) Ping(ctx context.Context) error {
	return stub.pingErr
}

func (stub *stubGenerator) record(prompt string) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.prompts = append(stub.prompts, prompt)
}

type recordingFactory struct {
	generator   *stubGenerator
	credentials []string
}

func (factory *recordingFactory) New(credential string) ContentGenerator {
	factory.credentials = append(factory.credentials, credential)
	return factory.generator
}

var errStubTransport = errors.New("transport down")
