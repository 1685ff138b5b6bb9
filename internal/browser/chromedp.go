package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/ceacwatch/ceacwatch/internal/domain"
	"github.com/ceacwatch/ceacwatch/internal/logger"
)

// Element selectors on the CEAC NIV status form. The form is classic WebForms
// markup; IDs are stable across posts but verbose.
const (
	selLocationDropdown = `#Location_Dropdown`
	selCaseNumber       = `#Visa_Case_Number`
	selPassportNumber   = `#Passport_Number`
	selSurname          = `#Surname`
	selCaptchaInput     = `#Captcha`
	selCaptchaImage     = `#c_status_ctl00_contentplaceholder1_defaultcaptcha_CaptchaImage`
	selSubmitButton     = `#ctl00_ContentPlaceHolder1_btnSubmit`
	selErrorLabel       = `#ctl00_ContentPlaceHolder1_lblError`
)

// DefaultStatusURL points directly at the NIV form, skipping the visa-type
// chooser page.
const DefaultStatusURL = "https://ceac.state.gov/ceacstattracker/status.aspx?App=NIV"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config tunes the Chrome adapter.
type Config struct {
	StatusURL     string
	Headless      bool
	NavTimeout    time.Duration // page load + form fill budget
	SubmitTimeout time.Duration // post-submit wait for popup or error label
}

// Chrome implements Browser on top of a shared chromedp exec allocator.
// Each Open spawns one tab; tabs are independent and never shared.
type Chrome struct {
	cfg         Config
	log         logger.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChrome prepares the exec allocator. Chrome itself is only launched when
// the first tab opens.
func NewChrome(cfg Config, log logger.Logger) *Chrome {
	if cfg.StatusURL == "" {
		cfg.StatusURL = DefaultStatusURL
	}
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 90 * time.Second
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 60 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(defaultUserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Chrome{
		cfg:         cfg,
		log:         log,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

// Close tears down the allocator and every remaining tab.
func (c *Chrome) Close() error {
	c.allocCancel()
	return nil
}

// Open starts a tab, navigates to the status form and fills it.
//
// The tab context derives from the allocator, not from ctx: manual-flow
// handles outlive the HTTP request that created them. ctx only bounds this
// call.
func (c *Chrome) Open(ctx context.Context, query domain.Query) (Handle, error) {
	tabCtx, tabCancel := chromedp.NewContext(c.allocCtx)

	h := &chromeHandle{
		cfg:       c.cfg,
		log:       c.log,
		query:     query,
		tabCtx:    tabCtx,
		tabCancel: tabCancel,
	}

	if err := h.navigateAndFill(ctx); err != nil {
		_ = h.Close()
		return nil, err
	}
	return h, nil
}

type chromeHandle struct {
	cfg       Config
	log       logger.Logger
	query     domain.Query
	tabCtx    context.Context
	tabCancel context.CancelFunc
	closeOnce sync.Once
}

// run executes tasks against the tab, bounded by the given timeout but also
// aborted if the caller's ctx dies first.
func (h *chromeHandle) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(h.tabCtx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(opCtx, actions...) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

func (h *chromeHandle) navigateAndFill(ctx context.Context) error {
	err := h.run(ctx, h.cfg.NavTimeout,
		chromedp.Navigate(h.cfg.StatusURL),
		chromedp.WaitVisible(selLocationDropdown, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to navigate to visa status page: %w", err)
	}
	return h.fillForm(ctx)
}

func (h *chromeHandle) fillForm(ctx context.Context) error {
	var locationFound bool
	err := h.run(ctx, h.cfg.NavTimeout,
		chromedp.Evaluate(selectLocationJS(h.query.Location), &locationFound),
		chromedp.SetValue(selCaseNumber, h.query.ApplicationID, chromedp.ByQuery),
		chromedp.SetValue(selPassportNumber, h.query.PassportNumber, chromedp.ByQuery),
		chromedp.SetValue(selSurname, h.query.Surname, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to fill form: %w", err)
	}
	if !locationFound {
		return fmt.Errorf("%w: location %q not found in embassy dropdown", domain.ErrInvalidInput, h.query.Location)
	}
	return nil
}

func (h *chromeHandle) CaptchaImage(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := h.run(ctx, h.cfg.NavTimeout,
		chromedp.WaitVisible(selCaptchaImage, chromedp.ByQuery),
		chromedp.Screenshot(selCaptchaImage, &buf, chromedp.NodeVisible, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get CAPTCHA image: %w", err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("failed to get CAPTCHA image: empty screenshot")
	}
	return buf, nil
}

// submitOutcome is the first of popup or error label to show up after the
// form posts back.
type submitOutcome struct {
	Kind string `json:"kind"` // "popup" | "error"
	Text string `json:"text"`
}

func (h *chromeHandle) SubmitCaptcha(ctx context.Context, answer string) (string, error) {
	var outcome submitOutcome
	err := h.run(ctx, h.cfg.SubmitTimeout,
		chromedp.SetValue(selCaptchaInput, answer, chromedp.ByQuery),
		chromedp.Click(selSubmitButton, chromedp.NodeVisible, chromedp.ByQuery),
		chromedp.PollFunction(pollOutcomeJS, &outcome,
			chromedp.WithPollingTimeout(h.cfg.SubmitTimeout),
			chromedp.WithPollingInterval(500*time.Millisecond),
		),
	)
	if err != nil {
		return "", fmt.Errorf("failed to submit form: %w", err)
	}

	switch outcome.Kind {
	case "popup":
		return outcome.Text, nil
	case "error":
		// The site reports a wrong CAPTCHA through the same error label as
		// every other validation problem; the label text is the only
		// distinguishing signal.
		if strings.Contains(strings.ToLower(outcome.Text), "captcha") {
			return "", fmt.Errorf("%w: %s", domain.ErrCaptchaRejected, outcome.Text)
		}
		return "", fmt.Errorf("submission rejected: %s", outcome.Text)
	default:
		return "", fmt.Errorf("unexpected page state after submit")
	}
}

func (h *chromeHandle) Refresh(ctx context.Context) error {
	err := h.run(ctx, h.cfg.NavTimeout,
		chromedp.Reload(),
		chromedp.WaitVisible(selLocationDropdown, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to reload status page: %w", err)
	}
	return h.fillForm(ctx)
}

func (h *chromeHandle) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := h.run(ctx, h.cfg.NavTimeout, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, fmt.Errorf("failed to take screenshot: %w", err)
	}
	return buf, nil
}

// Close asks the browser to close the page before dropping the context, so
// Chrome releases the tab promptly instead of waiting for the allocator.
func (h *chromeHandle) Close() error {
	h.closeOnce.Do(func() {
		closeCtx, cancel := context.WithTimeout(h.tabCtx, 5*time.Second)
		_ = chromedp.Run(closeCtx, page.Close())
		cancel()
		h.tabCancel()
	})
	return nil
}

// selectLocationJS picks the dropdown option whose text contains the wanted
// location (case-insensitive) and fires a change event, mirroring a manual
// selection. Evaluates to whether a match was found.
func selectLocationJS(location string) string {
	return fmt.Sprintf(`(() => {
		const dropdown = document.querySelector(%q);
		if (!dropdown) return false;
		const wanted = %q.toUpperCase();
		for (const option of dropdown.options) {
			if (option.text.toUpperCase().includes(wanted) && option.value) {
				dropdown.value = option.value;
				dropdown.dispatchEvent(new Event('change', { bubbles: true }));
				return true;
			}
		}
		return false;
	})()`, selLocationDropdown, location)
}

// pollOutcomeJS watches for the postback result: a visible modal/popup with
// content, or a non-empty validation error label. Returns false until either
// appears so PollFunction keeps polling.
const pollOutcomeJS = `() => {
	const err = document.querySelector('` + selErrorLabel + `');
	if (err && err.innerText.trim()) {
		return { kind: 'error', text: err.innerText.trim() };
	}
	const selectors = ['div[role="dialog"]', 'div.modal', 'div.popup', 'div[id*="popup"]', 'div[id*="modal"]', 'div[id*="dialog"]'];
	for (const sel of selectors) {
		const el = document.querySelector(sel);
		if (el && el.offsetParent !== null && el.innerText.trim()) {
			return { kind: 'popup', text: el.innerText };
		}
	}
	return false;
}`
