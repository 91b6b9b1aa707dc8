package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"

	"github.com/yoockh/jobbo/internal/client"
	"github.com/yoockh/jobbo/internal/logger"
	"github.com/yoockh/jobbo/internal/models"
)

type ptermNotifier struct{}

func (ptermNotifier) Success(msg string) { pterm.Success.Println(msg) }
func (ptermNotifier) Error(msg string)   { pterm.Error.Println(msg) }

// usageError is printed as is; other failures were already reported to the
// user by the client's notifier.
type usageError string

func (e usageError) Error() string { return string(e) }

type app struct {
	c   *client.Client
	now func() time.Time
}

const usage = `usage: jobbo [-api URL] [-config FILE] <command> [flags]

commands:
  search     search listings
  save       toggle a listing in your saved jobs
  saved      list saved jobs
  watch      follow saved jobs live
  login      sign in with email/password or a Google ID token
  register   create an account
  logout     sign out
  whoami     show the signed-in identity
  reset      request or confirm a password reset
  profile    show or edit your profile
`

func main() {
	apiURL := flag.String("api", "", "jobbo API base URL (default from config, then "+client.DefaultBaseURL+")")
	cfgPath := flag.String("config", client.DefaultConfigPath(), "config file")
	debug := flag.Bool("debug", false, "log HTTP calls")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	store, err := client.OpenFileTokenStore(*cfgPath)
	if err != nil {
		pterm.Fatal.Println(err)
	}
	base := *apiURL
	if base == "" {
		base = store.Config().BaseURL
	}
	if *apiURL != "" && *apiURL != store.Config().BaseURL {
		_ = store.SetBaseURL(*apiURL)
	}

	log := logger.Discard()
	if *debug {
		log = logger.New()
		log.SetLevel(logger.ParseLevel("debug"))
	}

	a := &app{
		c: client.New(base,
			client.WithTokenStore(store),
			client.WithNotifier(ptermNotifier{}),
			client.WithLogger(log),
		),
		now: time.Now,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := a.run(ctx, cmd, args); err != nil {
		var (
			se *client.SearchError
			ue usageError
		)
		switch {
		case errors.As(err, &se):
			pterm.Error.Println(se.Error())
		case errors.As(err, &ue):
			fmt.Fprintln(os.Stderr, ue)
		case errors.Is(err, context.Canceled):
		default:
			log.WithError(err).Debug("command failed")
		}
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "search":
		return a.search(ctx, args)
	case "save":
		return a.save(ctx, args)
	case "saved":
		return a.saved(ctx)
	case "watch":
		return a.watch(ctx)
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		s := client.NewSession(a.c)
		defer s.Close()
		return s.Logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "reset":
		return a.reset(ctx, args)
	case "profile":
		return a.profile(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return errors.New("unknown command")
	}
}

func searchFlags(fs *flag.FlagSet) *client.SearchParams {
	p := &client.SearchParams{}
	fs.StringVar(&p.Query, "what", "", "keywords")
	fs.StringVar(&p.Location, "where", "", "location")
	fs.IntVar(&p.SalaryMin, "salary-min", 0, "minimum salary")
	fs.IntVar(&p.SalaryMax, "salary-max", 0, "maximum salary")
	fs.BoolVar(&p.FullTime, "full-time", false, "full time only")
	fs.BoolVar(&p.Permanent, "permanent", false, "permanent only")
	fs.StringVar(&p.SortBy, "sort", "", "relevance|date|salary")
	fs.IntVar(&p.Page, "page", 0, "result page")
	fs.StringVar(&p.ExcludeQuery, "exclude", "", "keywords to exclude")
	fs.StringVar(&p.Category, "category", "", "category tag")
	fs.IntVar(&p.MaxDaysOld, "max-days-old", 0, "only listings newer than this")
	return p
}

func (a *app) search(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	p := searchFlags(fs)
	long := fs.Bool("long", false, "show descriptions")
	_ = fs.Parse(args)

	spinner, _ := pterm.DefaultSpinner.Start("Searching jobs")
	res, err := a.c.SearchJobs(ctx, *p)
	if err != nil {
		spinner.Fail(models.MsgJobsLoadFailed)
		return err
	}
	spinner.Success(fmt.Sprintf("%d matching jobs", res.Count))

	a.renderListings(res.Results, *long)
	return nil
}

func (a *app) renderListings(jobs []models.JobListing, long bool) {
	data := pterm.TableData{{"ID", "Title", "Company", "Location", "Salary", "Posted"}}
	for _, j := range jobs {
		loc := j.LocationDisplayName()
		if loc == "" {
			loc = models.LocationNotSpecified
		}
		data = append(data, []string{
			j.ID,
			truncate(j.Title, 48),
			truncate(j.CompanyDisplayName(), 28),
			truncate(loc, 28),
			formatSalaryRange(j.SalaryMin, j.SalaryMax),
			formatPosted(j.Created, a.now()),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	if !long {
		return
	}
	for _, j := range jobs {
		pterm.DefaultSection.Println(j.Title)
		pterm.Println(plainText(j.Description))
		if j.RedirectURL != "" {
			pterm.Println(j.RedirectURL)
		}
	}
}

// save finds the listing among the search results for the given flags, so
// the stored snapshot carries its details, then toggles it.
func (a *app) save(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	p := searchFlags(fs)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return usageError("usage: jobbo save [search flags] <job-id>")
	}
	id := fs.Arg(0)

	job := models.JobListing{ID: id}
	if p.Query != "" || p.Location != "" {
		if res, err := a.c.SearchJobs(ctx, *p); err == nil {
			for _, j := range res.Results {
				if j.ID == id {
					job = j
					break
				}
			}
		}
	}
	_, err := a.c.ToggleSave(ctx, job)
	return err
}

func (a *app) renderSaved(jobs []models.SavedJob) {
	data := pterm.TableData{{"ID", "Title", "Company", "Location", "Salary", "Saved"}}
	for _, s := range jobs {
		l := s.Listing()
		data = append(data, []string{
			s.JobID,
			truncate(s.Title, 48),
			truncate(s.CompanyName, 28),
			truncate(s.Location, 28),
			formatSalaryRange(l.SalaryMin, l.SalaryMax),
			s.SavedAt.Local().Format("2 Jan 2006 15:04"),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (a *app) saved(ctx context.Context) error {
	jobs, err := a.c.SavedJobs(ctx)
	if err != nil {
		if errors.Is(err, client.ErrNotSignedIn) {
			pterm.Error.Println(models.MsgLoginToSave)
		}
		return err
	}
	if len(jobs) == 0 {
		pterm.Info.Println("No saved jobs yet.")
		return nil
	}
	a.renderSaved(jobs)
	return nil
}

func (a *app) watch(ctx context.Context) error {
	sub, err := a.c.WatchSavedJobs(ctx, func(jobs []models.SavedJob) {
		pterm.DefaultSection.Printf("Saved jobs (%d)", len(jobs))
		a.renderSaved(jobs)
	})
	if err != nil {
		if errors.Is(err, client.ErrNotSignedIn) {
			pterm.Error.Println(models.MsgLoginToSave)
		}
		return err
	}
	defer sub.Close()

	select {
	case <-ctx.Done():
	case <-sub.Done():
		pterm.Warning.Println("live connection closed")
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	google := fs.String("google-id-token", "", "sign in with a Google ID token instead")
	_ = fs.Parse(args)

	s := client.NewSession(a.c)
	defer s.Close()

	var (
		id  *models.Identity
		err error
	)
	if *google != "" {
		id, err = s.LoginWithGoogle(ctx, *google)
	} else {
		if *email == "" || *password == "" {
			return usageError("usage: jobbo login -email EMAIL -password PASSWORD")
		}
		id, err = s.Login(ctx, *email, *password)
	}
	if err != nil {
		return err
	}
	pterm.Info.Printfln("Signed in as %s", describe(id))
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "display name")
	_ = fs.Parse(args)

	if *email == "" || *password == "" {
		return usageError("usage: jobbo register -email EMAIL -password PASSWORD [-name NAME]")
	}
	s := client.NewSession(a.c)
	defer s.Close()
	_, err := s.Register(ctx, *email, *password, *name)
	return err
}

func (a *app) whoami(ctx context.Context) error {
	s := client.NewSession(a.c)
	defer s.Close()

	st, err := s.Wait(ctx)
	if err != nil {
		return err
	}
	if st != client.StateAuthenticated {
		pterm.Info.Println("Not signed in.")
		return nil
	}
	id := s.Identity()
	pterm.Info.Printfln("%s (%s)", describe(id), strings.Join(id.Providers, ", "))
	return nil
}

func (a *app) reset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	email := fs.String("email", "", "send a reset link to this address")
	token := fs.String("token", "", "reset token from the email")
	password := fs.String("password", "", "new password (with -token)")
	_ = fs.Parse(args)

	s := client.NewSession(a.c)
	defer s.Close()

	switch {
	case *token != "":
		return s.ConfirmPasswordReset(ctx, *token, *password)
	case *email != "":
		return s.ResetPassword(ctx, *email)
	default:
		return usageError("usage: jobbo reset -email EMAIL | -token TOKEN -password NEW")
	}
}

// profile with no arguments prints the profile; field=value arguments edit it
// and save once.
func (a *app) profile(ctx context.Context, args []string) error {
	e, err := a.c.LoadProfile(ctx)
	if err != nil {
		if errors.Is(err, client.ErrNotSignedIn) {
			pterm.Error.Println("Please login to edit your profile")
		}
		return err
	}
	defer e.Close()

	for _, kv := range args {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return usageError(fmt.Sprintf("expected field=value, got %q", kv))
		}
		if err := e.Set(name, value); err != nil {
			return err
		}
	}
	if err := e.Save(ctx); err != nil {
		return err
	}

	f := e.Fields()
	_ = pterm.DefaultTable.WithData(pterm.TableData{
		{"full_name", f.FullName},
		{"phone", f.Phone},
		{"location", f.Location},
		{"skills", f.Skills},
		{"experience", f.Experience},
		{"education", f.Education},
	}).Render()
	return nil
}

func describe(id *models.Identity) string {
	if id == nil {
		return ""
	}
	if id.DisplayName != "" {
		return fmt.Sprintf("%s <%s>", id.DisplayName, id.Email)
	}
	return id.Email
}
