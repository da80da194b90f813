package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/model"
	"github.com/nao1215/docscrape/internal/output"
)

// Page is the browser tab the conversion steps drive.
type Page interface {
	// Navigate loads url and waits until the document is ready.
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// WaitVisible waits until the first element matching selector is visible.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// Settle pauses for d.
	Settle(ctx context.Context, d time.Duration) error

	// Title returns the document title, possibly empty.
	Title(ctx context.Context) (string, error)

	// InnerHTML returns the inner markup of the first element matching selector.
	InnerHTML(ctx context.Context, selector string) (string, error)
}

// HeaderSetter is implemented by pages that can change the headers sent
// with every request.
type HeaderSetter interface {
	SetExtraHeaders(ctx context.Context, headers map[string]string) error
}

// MarkdownConverter turns a markup fragment into Markdown.
type MarkdownConverter interface {
	Convert(fragment, pageURL string) (string, error)
}

// HeadersStep installs the request headers for the address's site.
// A nil map clears headers left over from the previous address.
type HeadersStep struct {
	page    HeaderSetter
	headers map[string]string
}

// NewHeadersStep creates a step sending headers with the following requests.
func NewHeadersStep(page HeaderSetter, headers map[string]string) *HeadersStep {
	return &HeadersStep{page: page, headers: headers}
}

// Name returns the step name.
func (s *HeadersStep) Name() string {
	return "headers"
}

// Do executes the headers step.
func (s *HeadersStep) Do(ctx context.Context, _ *model.PageRecord) error {
	return s.page.SetExtraHeaders(ctx, s.headers)
}

// NavigateStep loads the address.
type NavigateStep struct {
	page    Page
	timeout time.Duration
}

// NewNavigateStep creates a navigation step bounded by timeout.
func NewNavigateStep(page Page, timeout time.Duration) *NavigateStep {
	return &NavigateStep{page: page, timeout: timeout}
}

// Name returns the step name.
func (s *NavigateStep) Name() string {
	return "navigate"
}

// Do executes the navigate step.
func (s *NavigateStep) Do(ctx context.Context, rec *model.PageRecord) error {
	return s.page.Navigate(ctx, rec.URL, s.timeout)
}

// WaitContentStep waits for the content container to become visible.
// Pages without it fail here, before anything is read.
type WaitContentStep struct {
	page     Page
	selector string
	timeout  time.Duration
}

// NewWaitContentStep creates a step waiting up to timeout for selector.
func NewWaitContentStep(page Page, selector string, timeout time.Duration) *WaitContentStep {
	return &WaitContentStep{page: page, selector: selector, timeout: timeout}
}

// Name returns the step name.
func (s *WaitContentStep) Name() string {
	return "wait_content"
}

// Do executes the wait step.
func (s *WaitContentStep) Do(ctx context.Context, _ *model.PageRecord) error {
	return s.page.WaitVisible(ctx, s.selector, s.timeout)
}

// SettleStep pauses so late client-side rendering can finish.
type SettleStep struct {
	page  Page
	delay time.Duration
}

// NewSettleStep creates a fixed pause of delay.
func NewSettleStep(page Page, delay time.Duration) *SettleStep {
	return &SettleStep{page: page, delay: delay}
}

// Name returns the step name.
func (s *SettleStep) Name() string {
	return "settle"
}

// Do executes the settle step.
func (s *SettleStep) Do(ctx context.Context, _ *model.PageRecord) error {
	return s.page.Settle(ctx, s.delay)
}

// TitleStep reads the document title.
type TitleStep struct {
	page Page
}

// NewTitleStep creates a title step.
func NewTitleStep(page Page) *TitleStep {
	return &TitleStep{page: page}
}

// Name returns the step name.
func (s *TitleStep) Name() string {
	return "title"
}

// Do executes the title step.
func (s *TitleStep) Do(ctx context.Context, rec *model.PageRecord) error {
	title, err := s.page.Title(ctx)
	if err != nil {
		return err
	}
	rec.Title = title
	return nil
}

// ExtractStep reads the inner markup of the content container.
type ExtractStep struct {
	page     Page
	selector string
}

// NewExtractStep creates an extraction step for selector.
func NewExtractStep(page Page, selector string) *ExtractStep {
	return &ExtractStep{page: page, selector: selector}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do executes the extract step.
func (s *ExtractStep) Do(ctx context.Context, rec *model.PageRecord) error {
	html, err := s.page.InnerHTML(ctx, s.selector)
	if err != nil {
		return err
	}
	rec.HTML = html
	return nil
}

// ConvertStep turns the extracted markup into Markdown.
type ConvertStep struct {
	converter MarkdownConverter
}

// NewConvertStep creates a conversion step.
func NewConvertStep(converter MarkdownConverter) *ConvertStep {
	return &ConvertStep{converter: converter}
}

// Name returns the step name.
func (s *ConvertStep) Name() string {
	return "convert"
}

// Do executes the convert step.
func (s *ConvertStep) Do(_ context.Context, rec *model.PageRecord) error {
	md, err := s.converter.Convert(rec.HTML, rec.URL)
	if err != nil {
		return fmt.Errorf("convert to markdown: %w", err)
	}
	rec.Markdown = md
	rec.ComputeHash()
	return nil
}

// NameStep derives the file name from the title.
type NameStep struct{}

// NewNameStep creates a naming step.
func NewNameStep() *NameStep {
	return &NameStep{}
}

// Name returns the step name.
func (s *NameStep) Name() string {
	return "name"
}

// Do executes the name step.
func (s *NameStep) Do(_ context.Context, rec *model.PageRecord) error {
	rec.BaseName = output.SafeBaseName(rec.Title)
	return nil
}

// WriteStep writes the Markdown to a new file in dir.
type WriteStep struct {
	dir string
}

// NewWriteStep creates a write step for dir. The directory must exist.
func NewWriteStep(dir string) *WriteStep {
	return &WriteStep{dir: dir}
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return "write"
}

// Do executes the write step.
func (s *WriteStep) Do(_ context.Context, rec *model.PageRecord) error {
	path, err := output.WriteUnique(s.dir, rec.BaseName, output.MarkdownExt, []byte(rec.Markdown))
	if err != nil {
		return Abort(err)
	}
	rec.Path = path
	rec.Bytes = len(rec.Markdown)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// ContentSelector selects the content container.
	ContentSelector string

	// NavTimeout bounds the navigation.
	NavTimeout time.Duration

	// WaitTimeout bounds the wait for the content container.
	WaitTimeout time.Duration

	// SettleDelay is the pause after the container appeared.
	SettleDelay time.Duration

	// OutputDir is where Markdown files are written.
	OutputDir string

	// Headers are sent with the requests for this address when
	// SendHeaders is set. Nil clears previously installed headers.
	Headers     map[string]string
	SendHeaders bool
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineContentSelector sets the content container selector.
func WithPipelineContentSelector(selector string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ContentSelector = selector
	}
}

// WithPipelineNavTimeout sets the navigation timeout.
func WithPipelineNavTimeout(d time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.NavTimeout = d
	}
}

// WithPipelineWaitTimeout sets the content wait timeout.
func WithPipelineWaitTimeout(d time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.WaitTimeout = d
	}
}

// WithPipelineSettleDelay sets the pause after the content appeared.
func WithPipelineSettleDelay(d time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SettleDelay = d
	}
}

// WithPipelineOutputDir sets the output directory.
func WithPipelineOutputDir(dir string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.OutputDir = dir
	}
}

// WithPipelineHeaders installs headers before navigating. Pass nil to
// clear headers set for an earlier address.
func WithPipelineHeaders(headers map[string]string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Headers = headers
		c.SendHeaders = true
	}
}

// DefaultPipeline creates the conversion pipeline for one address:
// headers (optional), navigate, wait_content, settle, title, extract,
// convert, name and write.
func DefaultPipeline(page Page, converter MarkdownConverter, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		ContentSelector: config.DefaultContentSelector,
		NavTimeout:      config.DefaultConvertTimeout,
		WaitTimeout:     config.DefaultWaitTimeout,
		SettleDelay:     config.DefaultConvertSettle,
		OutputDir:       config.DefaultOutputDir,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	if cfg.SendHeaders {
		if hs, ok := page.(HeaderSetter); ok {
			p.AddStep(NewHeadersStep(hs, cfg.Headers))
		}
	}

	p.AddSteps(
		NewNavigateStep(page, cfg.NavTimeout),
		NewWaitContentStep(page, cfg.ContentSelector, cfg.WaitTimeout),
		NewSettleStep(page, cfg.SettleDelay),
		NewTitleStep(page),
		NewExtractStep(page, cfg.ContentSelector),
		NewConvertStep(converter),
		NewNameStep(),
		NewWriteStep(cfg.OutputDir),
	)

	return p
}
