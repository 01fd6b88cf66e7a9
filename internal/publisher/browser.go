package publisher

import "context"

// Browser is the minimal remote-UI surface the guard drives. A chromedp
// Session implements it in production; tests substitute a scripted fake.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	SendKeys(ctx context.Context, selector, text string) error
	SetFiles(ctx context.Context, selector, path string) error
	Exists(ctx context.Context, selector string) (bool, error)

	// ExportCookies and ImportCookies move the session cookie jar through an
	// opaque serialized form so a later run can skip the login form.
	ExportCookies(ctx context.Context) ([]byte, error)
	ImportCookies(ctx context.Context, data []byte) error

	// Close releases the session and its backing browser process. Must be
	// safe to call more than once.
	Close() error
}

// Selectors for the hosted authoring UI. Selectors beginning with "//" are
// XPath, everything else is CSS.
const (
	selLoginLink         = `a[href='/pod/login']`
	selContinueSpotify   = `//span[text()='Continue with Spotify']/ancestor::button`
	selEmailInput        = `input#login-username`
	selContinueButton    = `button#login-button`
	selPasswordToggle    = `button[data-encore-id='buttonTertiary']`
	selPasswordInput     = `input[data-testid='login-password']`
	selLoginSubmit       = `//button[@id='login-button' or @data-testid='login-button']`
	selCaptchaFrame      = `iframe[src*='captcha']`
	selDashboardNav      = `nav[aria-label='Primary navigation']`
	selSelectFileButton  = `//span[text()='Select a file']/ancestor::button`
	selAudioFileInput    = `input[type='file']`
	selTitleInput        = `input#title-input`
	selDescriptionEditor = `div[role='textbox'][data-slate-editor='true']`
	selUploadComplete    = `div[data-testid='audio-upload-complete']`
	selThumbnailInput    = `input[type='file'][accept*='image']`
	selWizardClose       = `button[aria-label='Close'][data-encore-id='buttonTertiary']`
	selSaveDraftButton   = `//span[text()='Save draft']/ancestor::button`
	selDetailsNext       = `button[form='details-form'][type='submit']`
	selPublishNow        = `input#publish-date-now`
	selReviewSubmit      = `button[form='review-form'][type='submit']`
)

const wizardPath = "/pod/dashboard/episode/wizard"
