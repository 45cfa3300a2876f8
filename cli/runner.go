// Command execution for CLI commands.
//
// Information Hiding:
// - Store and gateway wiring hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/atelierhq/atelier/blob"
	"github.com/atelierhq/atelier/config"
	"github.com/atelierhq/atelier/gateway"
	"github.com/atelierhq/atelier/knowledge"
	"github.com/atelierhq/atelier/media"
	"github.com/atelierhq/atelier/session"
	"github.com/atelierhq/atelier/storage"
)

// Options holds CLI execution options.
type Options struct {
	Provider string
	User     string
	Verbose  bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{}
}

// loadSettings resolves configuration with CLI overrides applied.
func loadSettings(opts Options) (config.Settings, error) {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return config.Settings{}, err
	}
	if opts.User != "" {
		settings.User = opts.User
	}
	return settings, nil
}

// RunChat starts an interactive chat session backed by durable history.
// The store is opened but never provisioned here; a missing schema
// degrades the session to a fresh start instead of failing it.
func RunChat(ctx context.Context, knowledgePath string, opts Options) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	provider, err := createProvider(opts.Provider)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, settings.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	var system string
	if knowledgePath != "" {
		system, err = knowledge.Load(knowledgePath)
		if err != nil {
			return err
		}
	}

	manager := session.NewManager(provider, store, settings.User)
	defer manager.Close()
	manager.Init(ctx, system)

	if opts.Verbose {
		status := manager.Status()
		fmt.Printf("session state: %s, degraded: %s\n", status.State, status.Degraded)
	}

	fmt.Printf("Chatting as '%s' via %s (%s). Type '/reset' to clear history, 'exit' to quit.\n\n",
		settings.User, provider.Name(), provider.Model())
	printTranscript(manager.Turns())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		if input == "/reset" {
			if _, err := manager.Reset(ctx, system); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			turns := manager.Turns()
			fmt.Printf("\n%s\n\n", turns[len(turns)-1].Text)
			continue
		}

		reply, err := manager.SendTurn(ctx, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Printf("\n%s\n\n", reply.Text)
	}

	return scanner.Err()
}

// RunImagine generates an image from a prompt and writes it to outPath.
// With save set, the image is also stored in the user's gallery.
func RunImagine(ctx context.Context, prompt, outPath string, save bool, opts Options) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	imagery, err := newImagery()
	if err != nil {
		return err
	}

	fmt.Println("Generating image...")
	data, mime, err := imagery.Generate(ctx, prompt)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = "imagine-" + time.Now().Format("20060102-150405") + outputExtension(mime, ".png")
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	fmt.Printf("Saved image to %s (%d bytes)\n", outPath, len(data))

	if save {
		mediaManager, cleanup, err := buildMediaManager(ctx, settings)
		if err != nil {
			return err
		}
		defer cleanup()

		record, err := mediaManager.Save(ctx, settings.User, prompt, data)
		if err != nil {
			return fmt.Errorf("failed to save to gallery: %w", err)
		}
		fmt.Printf("Added to gallery as %s\n", record.StoragePath)
	}

	return nil
}

// RunEdit rewrites an existing image per the instruction.
func RunEdit(ctx context.Context, imagePath, instruction, outPath string, opts Options) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	imagery, err := newImagery()
	if err != nil {
		return err
	}

	fmt.Println("Editing image...")
	edited, mime, err := imagery.Edit(ctx, instruction, data, mimetype.Detect(data).String())
	if err != nil {
		return err
	}

	if outPath == "" {
		ext := outputExtension(mime, filepath.Ext(imagePath))
		stem := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
		outPath = stem + "-edited" + ext
	}
	if err := os.WriteFile(outPath, edited, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	fmt.Printf("Saved edited image to %s (%d bytes)\n", outPath, len(edited))

	return nil
}

// RunAnalyze describes an image, optionally answering a specific question.
func RunAnalyze(ctx context.Context, imagePath, prompt string, opts Options) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	imagery, err := newImagery()
	if err != nil {
		return err
	}

	text, err := imagery.Describe(ctx, prompt, data, mimetype.Detect(data).String())
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", text)
	return nil
}

// RunSearch answers a query grounded in live web results and prints
// the sources the answer drew on.
func RunSearch(ctx context.Context, query string, opts Options) error {
	key, err := config.APIKeyFor("gemini")
	if err != nil {
		return err
	}

	reply, err := gateway.NewSearcher(key).Search(ctx, query)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", reply.Text)
	if len(reply.Citations) > 0 {
		fmt.Println("\nSources:")
		for i, citation := range reply.Citations {
			title := citation.Title
			if title == "" {
				title = citation.URI
			}
			fmt.Printf("  [%d] %s\n      %s\n", i+1, title, citation.URI)
		}
	}

	return nil
}

// RunSay synthesizes speech from text and writes the audio to outPath.
func RunSay(ctx context.Context, text, voice, outPath string, opts Options) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	synthesizer, err := buildSynthesizer(settings, voice)
	if err != nil {
		return err
	}

	fmt.Println("Synthesizing speech...")
	audio, mime, err := synthesizer.Synthesize(ctx, text)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = "say-" + time.Now().Format("20060102-150405") + outputExtension(mime, ".wav")
	}
	if err := os.WriteFile(outPath, audio, 0644); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	fmt.Printf("Saved audio to %s (%d bytes)\n", outPath, len(audio))

	return nil
}

// RunTranscribe converts an audio file to text.
func RunTranscribe(ctx context.Context, audioPath string, opts Options) error {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return fmt.Errorf("failed to read audio: %w", err)
	}

	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	transcriber, err := buildTranscriber(settings)
	if err != nil {
		return err
	}

	text, err := transcriber.Transcribe(ctx, data, mimetype.Detect(data).String())
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", text)
	return nil
}

// RunSolve works through a long-form problem with extended reasoning.
func RunSolve(ctx context.Context, task string, opts Options) error {
	key, err := config.APIKeyFor("gemini")
	if err != nil {
		return err
	}

	fmt.Println("Solving (this may take a while)...")
	answer, err := gateway.NewSolver(key).Solve(ctx, task)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", answer)
	return nil
}

// RunGalleryList prints the user's gallery, newest first.
func RunGalleryList(ctx context.Context, opts Options) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	mediaManager, cleanup, err := buildMediaManager(ctx, settings)
	if err != nil {
		return err
	}
	defer cleanup()

	items, err := mediaManager.List(ctx, settings.User)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("Gallery is empty.")
		return nil
	}

	for _, item := range items {
		fmt.Printf("%s  %s\n", item.CreatedAt.Local().Format("2006-01-02 15:04"), item.StoragePath)
		if item.Prompt != "" {
			fmt.Printf("    prompt: %s\n", item.Prompt)
		}
		if item.URL != "" {
			fmt.Printf("    url: %s\n", item.URL)
		} else {
			fmt.Println("    url: (unavailable)")
		}
	}

	return nil
}

// RunGalleryAdd stores a local image file in the user's gallery.
func RunGalleryAdd(ctx context.Context, imagePath, prompt string, opts Options) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	mediaManager, cleanup, err := buildMediaManager(ctx, settings)
	if err != nil {
		return err
	}
	defer cleanup()

	record, err := mediaManager.Save(ctx, settings.User, prompt, data)
	if err != nil {
		return err
	}

	fmt.Printf("Added %s to gallery as %s\n", imagePath, record.StoragePath)
	return nil
}

// RunGalleryRemove deletes a gallery item by its storage path.
func RunGalleryRemove(ctx context.Context, storagePath string, opts Options) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	mediaManager, cleanup, err := buildMediaManager(ctx, settings)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := mediaManager.Delete(ctx, settings.User, storagePath); err != nil {
		return err
	}

	fmt.Printf("Removed %s\n", storagePath)
	return nil
}

// RunSetup provisions the row-store schema. Until this has run, chat
// sessions start degraded with the setup-incomplete notice.
func RunSetup(ctx context.Context, opts Options) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, settings.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to provision schema: %w", err)
	}

	fmt.Printf("Schema provisioned (%s driver).\n", settings.Store.Driver)
	return nil
}

// printTranscript renders loaded history the way the chat loop renders
// live turns, so resumed sessions read the same as fresh ones.
func printTranscript(turns []session.Turn) {
	for _, turn := range turns {
		switch turn.Sender {
		case session.SenderUser:
			fmt.Printf("> %s\n", turn.Text)
		default:
			fmt.Printf("%s\n\n", turn.Text)
		}
	}
}

func createProvider(providerName string) (gateway.ChatProvider, error) {
	settings, err := config.New(providerName)
	if err != nil {
		return nil, err
	}

	providerType, err := gateway.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	return providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
}

func newImagery() (*gateway.Imagery, error) {
	key, err := config.APIKeyFor("gemini")
	if err != nil {
		return nil, err
	}
	return gateway.NewImagery(key), nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (storage.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return storage.OpenSqlite(cfg.DSN)
	case "postgres":
		return storage.OpenPostgres(ctx, cfg.DSN)
	case "mongo":
		return storage.OpenMongo(ctx, cfg.DSN, cfg.Database)
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Driver)
	}
}

func openBlobStore(ctx context.Context, cfg config.BlobConfig) (blob.Store, error) {
	switch cfg.Backend {
	case "fs":
		return blob.NewFSStore(cfg.Dir)
	case "s3":
		return blob.NewS3Store(ctx, blob.S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend: %q", cfg.Backend)
	}
}

// buildMediaManager wires the gallery stack. The returned cleanup
// closes the row store.
func buildMediaManager(ctx context.Context, settings config.Settings) (*media.Manager, func(), error) {
	store, err := openStore(ctx, settings.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	blobs, err := openBlobStore(ctx, settings.Blob)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to open blob store: %w", err)
	}

	cleanup := func() { _ = store.Close() }
	return media.NewManager(blobs, store, settings.Blob.URLTTL), cleanup, nil
}

func buildSynthesizer(settings config.Settings, voice string) (gateway.Synthesizer, error) {
	if voice == "" {
		voice = settings.Speech.Voice
	}

	switch settings.Speech.Provider {
	case "openai":
		key, err := config.APIKeyFor("openai")
		if err != nil {
			return nil, err
		}
		return gateway.NewOpenAISpeech(key), nil
	default:
		key, err := config.APIKeyFor("gemini")
		if err != nil {
			return nil, err
		}
		return gateway.NewGeminiSpeech(key, voice), nil
	}
}

func buildTranscriber(settings config.Settings) (gateway.Transcriber, error) {
	switch settings.Speech.Provider {
	case "openai":
		key, err := config.APIKeyFor("openai")
		if err != nil {
			return nil, err
		}
		return gateway.NewOpenAISpeech(key), nil
	default:
		key, err := config.APIKeyFor("gemini")
		if err != nil {
			return nil, err
		}
		return gateway.NewGeminiSpeech(key, ""), nil
	}
}

// outputExtension maps a response MIME type to a file extension,
// falling back when the type is unknown.
func outputExtension(mime, fallback string) string {
	if m := mimetype.Lookup(mime); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return fallback
}
