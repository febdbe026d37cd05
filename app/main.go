package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/jbapp/app/persistence"
	"github.com/umputun/jbapp/app/store"
)

const memoryDB = ":memory:"

var opts struct {
	DB  string `long:"db" env:"JBAPP_DB" default:"jbapp.db" description:"storage file, :memory: for in-memory storage"`
	Dbg bool   `long:"dbg" env:"JBAPP_DEBUG" description:"debug mode"`

	Log struct {
		Enabled         bool   `long:"enabled" env:"ENABLED" description:"enable logging"`
		Filename        string `long:"file" env:"FILE" description:"log file, stderr if not set"`
		MaxSize         int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"max log file size in megabytes"`
		MaxBackups      int    `long:"max-backups" env:"MAX_BACKUPS" default:"7" description:"max number of old log files"`
		MaxAge          int    `long:"max-age" env:"MAX_AGE" default:"0" description:"max days to keep old log files"`
		EnabledCompress bool   `long:"compress" env:"COMPRESS" description:"compress rotated log files"`
	} `group:"log" namespace:"log" env-namespace:"JBAPP_LOG"`

	Jobs struct {
		Search   string `short:"s" long:"search" description:"search in title, company, description and location"`
		Position string `short:"p" long:"position" choice:"Full-time" choice:"Part-time" choice:"Contract" choice:"Internship" description:"position filter"`
	} `command:"jobs" description:"list jobs"`

	Register struct {
		Name     string `long:"name" required:"true" description:"full name"`
		Email    string `long:"email" required:"true" description:"email"`
		Password string `long:"password" required:"true" description:"password"`
		Confirm  string `long:"confirm" required:"true" description:"password confirmation"`
	} `command:"register" description:"create an account and sign in"`

	Login struct {
		Email    string `long:"email" required:"true" description:"email"`
		Password string `long:"password" required:"true" description:"password"`
	} `command:"login" description:"sign in"`

	Logout struct{} `command:"logout" description:"sign out"`
	WhoAmI struct{} `command:"whoami" description:"show signed in user"`

	Post struct {
		Title       string `long:"title" required:"true" description:"job title"`
		Company     string `long:"company" required:"true" description:"company"`
		Position    string `long:"position" default:"Full-time" description:"Full-time, Part-time, Contract or Internship"`
		Location    string `long:"location" description:"location"`
		Salary      string `long:"salary" description:"salary"`
		StartDate   string `long:"start" description:"start date, YYYY-MM-DD"`
		Description string `long:"description" description:"job description"`
	} `command:"post" description:"post a new job"`

	Apply struct {
		JobID int64 `long:"job" required:"true" description:"job id"`
	} `command:"apply" description:"apply for a job"`

	Applied struct {
		JobID int64 `long:"job" required:"true" description:"job id"`
	} `command:"applied" description:"check if signed in user applied for a job"`

	Schema struct {
		Output string `short:"o" long:"output" default:"schema.json" description:"output file, - for stdout"`
	} `command:"schema" description:"write JSON schema of stored records"`
}

var revision = "unknown"

func main() {
	p := flags.NewParser(&opts, flags.Default)
	if _, err := p.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	setupLogs()
	log.Printf("[DEBUG] jbapp %s, command %s", revision, p.Active.Name)

	if err := execute(p.Active.Name, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// execute runs a single command against the configured storage
func execute(command string, out io.Writer) error {
	if command == "schema" {
		return writeSchema(opts.Schema.Output, out)
	}

	storage, err := makeStorage(opts.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Printf("[WARN] failed to close storage: %v", err)
		}
	}()

	s := store.New(storage)
	s.Initialize()
	return run(command, s, out)
}

func run(command string, s *store.Store, out io.Writer) error {
	switch command {
	case "jobs":
		return listJobs(s, out)
	case "register":
		r := opts.Register
		user, err := s.RegisterUser(r.Name, r.Email, r.Password, r.Confirm)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Account created successfully! Welcome, %s\n", user.Name)
	case "login":
		user, err := s.Authenticate(opts.Login.Email, opts.Login.Password)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Successfully signed in! Welcome, %s\n", user.Name)
	case "logout":
		if err := s.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Successfully signed out!")
	case "whoami":
		user, ok := s.CurrentUser()
		if !ok {
			fmt.Fprintln(out, "not signed in")
			return nil
		}
		fmt.Fprintf(out, "%s <%s>, joined %s\n", user.Name, user.Email, formatDate(user.DateJoined))
	case "post":
		ps := opts.Post
		job, err := s.PostJob(store.JobRequest{Title: ps.Title, Company: ps.Company, Position: ps.Position,
			Location: ps.Location, Salary: ps.Salary, StartDate: ps.StartDate, Description: ps.Description})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Job posted successfully! id %d\n", job.ID)
	case "apply":
		if _, err := s.ApplyToJob(opts.Apply.JobID); err != nil {
			return err
		}
		job, _ := s.Job(opts.Apply.JobID)
		fmt.Fprintf(out, "Successfully applied for %s at %s!\n", job.Title, job.Company)
	case "applied":
		user, ok := s.CurrentUser()
		if !ok {
			return fmt.Errorf("%w: checking applications", store.ErrAuthRequired)
		}
		fmt.Fprintln(out, strconv.FormatBool(s.HasApplied(opts.Applied.JobID, user.ID)))
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func listJobs(s *store.Store, out io.Writer) error {
	jobs := s.ListJobs(opts.Jobs.Search, opts.Jobs.Position)
	user, signedIn := s.CurrentUser()
	for _, j := range jobs {
		line := fmt.Sprintf("#%d %s at %s [%s]", j.ID, j.Title, j.Company, j.Position)
		if j.Location != "" {
			line += ", " + j.Location
		}
		if j.Salary != "" {
			line += ", " + j.Salary
		}
		line += ", posted " + formatDate(j.DatePosted)
		if signedIn && s.HasApplied(j.ID, user.ID) {
			line += " ✓ Applied"
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write job %d: %w", j.ID, err)
		}
	}
	suffix := "s"
	if len(jobs) == 1 {
		suffix = ""
	}
	_, err := fmt.Fprintf(out, "%d job%s found\n", len(jobs), suffix)
	return err
}

func writeSchema(output string, out io.Writer) error {
	data, err := store.Schema()
	if err != nil {
		return err
	}
	if output == "-" {
		_, err = out.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(output, data, 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	fmt.Fprintf(out, "Schema generated successfully at %s\n", output)
	return nil
}

func makeStorage(dbPath string) (persistence.Storage, error) {
	if dbPath == memoryDB {
		log.Printf("[INFO] using in-memory storage, nothing will be saved")
		return persistence.NewMemoryStorage(), nil
	}
	storage, err := persistence.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("can't open storage %s: %w", dbPath, err)
	}
	return storage, nil
}

// formatDate converts YYYY-MM-DD to "Sep 10, 2025", returns input as is if it can't be parsed
func formatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2, 2006")
}

// setupLogs configures lgr and returns the writer logs go to
func setupLogs() io.Writer {
	if !opts.Log.Enabled {
		log.Setup(log.Out(io.Discard), log.Err(io.Discard))
		return io.Discard
	}

	var out io.Writer = os.Stderr
	if opts.Log.Filename != "" {
		out = &lumberjack.Logger{
			Filename:   opts.Log.Filename,
			MaxSize:    opts.Log.MaxSize,
			MaxBackups: opts.Log.MaxBackups,
			MaxAge:     opts.Log.MaxAge,
			Compress:   opts.Log.EnabledCompress,
		}
	}

	if opts.Dbg {
		log.Setup(log.Out(out), log.Err(out), log.Debug, log.Msec, log.CallerFunc, log.CallerPkg, log.CallerFile)
		return out
	}
	log.Setup(log.Out(out), log.Err(out), log.Msec)
	return out
}
