package session_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/pricing"
	"storefront/internal/domain/session"
)

type flowContext struct {
	profiles map[string]catalog.Profile
	sess     *session.Session
	lastErr  error
	notices  []string
	clock    time.Time
}

func (f *flowContext) reset() {
	f.profiles = map[string]catalog.Profile{}
	f.sess = nil
	f.lastErr = nil
	f.notices = nil
	f.clock = time.Date(2026, 6, 1, 20, 0, 0, 0, time.UTC)
}

func (f *flowContext) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *flowContext) collect() {
	for _, n := range f.sess.DrainNotices() {
		f.notices = append(f.notices, n.Message)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (f *flowContext) aProfilePricedAtOffering(id string, price int, services string) error {
	f.profiles[id] = catalog.Profile{
		ID:       catalog.ProfileID(id),
		Name:     id,
		Price:    int64(price),
		Services: splitList(services),
		Images:   []string{id + ".jpg"},
	}
	return nil
}

func (f *flowContext) aNewSession() error {
	s, err := session.New("flow", "1001", f.tick())
	if err != nil {
		return err
	}
	f.sess = s
	return nil
}

func (f *flowContext) theClientOpensProfile(id string) error {
	p, ok := f.profiles[id]
	if !ok {
		return fmt.Errorf("unknown profile %q", id)
	}
	return f.sess.SelectProfile(p, f.tick())
}

func (f *flowContext) theClientNavigatesTo(view string) error {
	v, err := session.ParseView(view)
	if err != nil {
		return err
	}
	return f.sess.Navigate(v, f.tick())
}

func (f *flowContext) theClientStartsBooking() error {
	return f.sess.StartBooking(f.tick())
}

func (f *flowContext) theClientSelectsServices(raw string) error {
	for _, name := range splitList(raw) {
		if _, err := f.sess.ToggleService(name, f.tick()); err != nil {
			return err
		}
	}
	return nil
}

func (f *flowContext) theClientPicksDuration(raw string) error {
	d, err := pricing.ParseDuration(raw)
	if err != nil {
		return err
	}
	return f.sess.SetDuration(d, f.tick())
}

func (f *flowContext) theDraftTotalIs(want int) error {
	d, ok := f.sess.Draft()
	if !ok {
		return errors.New("no draft")
	}
	p := f.profiles[string(f.sess.SelectedProfileID())]
	if got := d.Total(p.Price); got != int64(want) {
		return fmt.Errorf("expected total %d, got %d", want, got)
	}
	return nil
}

func (f *flowContext) theClientSubmitsTheBooking() error {
	f.lastErr = f.sess.SubmitBooking(f.tick())
	f.collect()
	return nil
}

func (f *flowContext) theSubmissionIsRejected() error {
	if !errors.Is(f.lastErr, session.ErrNoServicesSelected) {
		return fmt.Errorf("expected rejection, got %v", f.lastErr)
	}
	return nil
}

func (f *flowContext) theClientGoesBack() error {
	return f.sess.Back(f.tick())
}

func (f *flowContext) theClientAttachesPaymentProof(ref string) error {
	return f.sess.AttachPaymentProof(ref, f.tick())
}

func (f *flowContext) completePayment(ok bool) error {
	if _, err := f.sess.BeginSubmission(f.tick()); err != nil {
		return err
	}
	if err := f.sess.CompleteSubmission(ok, f.tick()); err != nil {
		return err
	}
	f.collect()
	return nil
}

func (f *flowContext) thePaymentIsDelivered() error { return f.completePayment(true) }

func (f *flowContext) thePaymentFails() error { return f.completePayment(false) }

func (f *flowContext) theViewIs(want string) error {
	if got := string(f.sess.View()); got != want {
		return fmt.Errorf("expected view %s, got %s", want, got)
	}
	return nil
}

func (f *flowContext) theLastNoticeSays(want string) error {
	if len(f.notices) == 0 {
		return errors.New("no notices posted")
	}
	if got := f.notices[len(f.notices)-1]; got != want {
		return fmt.Errorf("expected notice %q, got %q", want, got)
	}
	return nil
}

func (f *flowContext) noDraftRemains() error {
	if _, ok := f.sess.Draft(); ok {
		return errors.New("draft still present")
	}
	if f.sess.SelectedProfileID() != "" {
		return errors.New("profile still selected")
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	fc := &flowContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		fc.reset()
		return ctx, nil
	})

	ctx.Step(`^a profile "([^"]*)" priced at (\d+) offering "([^"]*)"$`, fc.aProfilePricedAtOffering)
	ctx.Step(`^a new session$`, fc.aNewSession)

	ctx.Step(`^the client opens profile "([^"]*)"$`, fc.theClientOpensProfile)
	ctx.Step(`^the client navigates to "([^"]*)"$`, fc.theClientNavigatesTo)
	ctx.Step(`^the client starts booking$`, fc.theClientStartsBooking)
	ctx.Step(`^the client selects services "([^"]*)"$`, fc.theClientSelectsServices)
	ctx.Step(`^the client picks duration "([^"]*)"$`, fc.theClientPicksDuration)
	ctx.Step(`^the client submits the booking$`, fc.theClientSubmitsTheBooking)
	ctx.Step(`^the client goes back$`, fc.theClientGoesBack)
	ctx.Step(`^the client attaches payment proof "([^"]*)"$`, fc.theClientAttachesPaymentProof)
	ctx.Step(`^the payment is delivered$`, fc.thePaymentIsDelivered)
	ctx.Step(`^the payment fails$`, fc.thePaymentFails)

	ctx.Step(`^the draft total is (\d+)$`, fc.theDraftTotalIs)
	ctx.Step(`^the view is "([^"]*)"$`, fc.theViewIs)
	ctx.Step(`^the submission is rejected$`, fc.theSubmissionIsRejected)
	ctx.Step(`^the last notice says "([^"]*)"$`, fc.theLastNoticeSays)
	ctx.Step(`^no draft remains$`, fc.noDraftRemains)
}

func TestBookingFlowFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/booking_flow.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
