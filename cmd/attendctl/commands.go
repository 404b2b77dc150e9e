package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/auth"
	"golang.org/x/term"
)

// deniedError carries a location denial up to main for its own exit code.
type deniedError struct {
	reason  attendance.DenialReason
	title   string
	message string
}

func (e *deniedError) Error() string {
	return fmt.Sprintf("%s: %s", e.reason, e.message)
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		return a.logout(ctx, args)
	case "me":
		return a.me(ctx, args)
	case "check-in":
		return a.check(ctx, args, "check-in")
	case "check-out":
		return a.check(ctx, args, "check-out")
	case "status":
		return a.status(ctx, args)
	case "today":
		return a.today(ctx, args)
	case "history":
		return a.history(ctx, args)
	case "stats":
		return a.stats(ctx, args)
	case "serve":
		return a.serve(ctx, args)
	}
	return fmt.Errorf("unknown command %q, run 'attendctl help'", command)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("username", "", "account email or username")
	password := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *username == "" {
		if *username, err = a.readLine("Username: "); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = a.readPassword("Password: "); err != nil {
			return err
		}
	}

	session, err := a.authService.Login(ctx, auth.LoginRequest{Username: *username, Password: *password})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", session.User.DisplayName(), session.User.Role)

	if _, err := a.attendanceService.Resume(ctx); err != nil {
		slog.Warn("Could not load today's attendance", "error", err)
	}
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	phone := fs.String("phone", "", "phone number (optional)")
	password := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *password == "" {
		first, err := a.readPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := a.readPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if first != confirm {
			return errors.New("passwords do not match")
		}
		*password = first
	}

	req := auth.RegisterRequest{Name: *name, Email: *email, Password: *password}
	if *phone != "" {
		req.Phone = phone
	}

	u, err := a.authService.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s <%s>\n", u.DisplayName(), u.Email)
	if _, err := a.authService.Current(); err != nil {
		fmt.Fprintln(a.out, "Run 'attendctl login' to sign in.")
	}
	return nil
}

func (a *app) logout(ctx context.Context, args []string) error {
	if _, err := a.authService.Restore(ctx); err != nil && !errors.Is(err, auth.ErrNotAuthenticated) {
		return err
	}
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *app) me(ctx context.Context, args []string) error {
	if err := a.restore(ctx); err != nil {
		return err
	}
	u, err := a.authService.Me(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", u.ID)
	fmt.Fprintf(w, "Name\t%s\n", u.DisplayName())
	fmt.Fprintf(w, "Email\t%s\n", u.Email)
	fmt.Fprintf(w, "Role\t%s\n", u.Role)
	if u.Department != nil {
		fmt.Fprintf(w, "Department\t%s\n", *u.Department)
	}
	if u.Phone != nil {
		fmt.Fprintf(w, "Phone\t%s\n", *u.Phone)
	}
	return w.Flush()
}

func (a *app) check(ctx context.Context, args []string, command string) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	notes := fs.String("notes", "", "optional note stored with the record")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.restore(ctx); err != nil {
		return err
	}
	if _, err := a.attendanceService.Resume(ctx); err != nil {
		slog.Warn("Could not load today's attendance", "error", err)
	}

	var req attendance.CheckRequest
	if *notes != "" {
		req.Notes = notes
	}

	var (
		resp attendance.CheckResponse
		err  error
	)
	if command == "check-in" {
		resp, err = a.attendanceService.CheckIn(ctx, req)
	} else {
		resp, err = a.attendanceService.CheckOut(ctx, req)
	}
	if err != nil {
		return err
	}
	if !resp.Authorized {
		return &deniedError{reason: resp.Reason, title: resp.Title, message: resp.Message}
	}

	switch resp.Session.Status {
	case attendance.StatusCheckedIn:
		at := resp.Session.CheckInTime
		fmt.Fprintf(a.out, "Checked in at %s\n", at.Format("15:04"))
		if a.workingHours.IsLate(*at) {
			fmt.Fprintf(a.out, "Late: the working day starts at %s\n", a.workingHours.Start)
		}
	case attendance.StatusCheckedOut:
		fmt.Fprintf(a.out, "Checked out at %s, worked %s\n", resp.Session.CheckOutTime.Format("15:04"), resp.Session.WorkDuration)
	}
	return nil
}

func (a *app) status(ctx context.Context, args []string) error {
	if err := a.restore(ctx); err != nil {
		return err
	}
	snapshot, err := a.attendanceService.Resume(ctx)
	if err != nil {
		slog.Warn("Showing local session only", "error", err)
		snapshot = a.attendanceService.Session()
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Day\t%s\n", snapshot.Day)
	fmt.Fprintf(w, "Status\t%s\n", snapshot.Status)
	if snapshot.CheckInTime != nil {
		fmt.Fprintf(w, "Check in\t%s\n", snapshot.CheckInTime.Format("15:04"))
	}
	if snapshot.CheckOutTime != nil {
		fmt.Fprintf(w, "Check out\t%s\n", snapshot.CheckOutTime.Format("15:04"))
		fmt.Fprintf(w, "Worked\t%s\n", snapshot.WorkDuration)
	}
	fmt.Fprintf(w, "Office\t%s (radius %.0fm)\n", a.geofence.Center(), a.geofence.RadiusMeters())
	fmt.Fprintf(w, "Working hours\t%s - %s\n", a.workingHours.Start, a.workingHours.End)
	return w.Flush()
}

func (a *app) today(ctx context.Context, args []string) error {
	if err := a.restore(ctx); err != nil {
		return err
	}
	record, err := a.attendanceService.Today(ctx)
	if errors.Is(err, attendance.ErrNoRecordToday) {
		fmt.Fprintln(a.out, "No attendance recorded today")
		return nil
	}
	if err != nil {
		return err
	}
	return a.printRecords([]attendance.Record{record})
}

func (a *app) history(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	from := fs.String("from", "", "start date, YYYY-MM-DD")
	to := fs.String("to", "", "end date, YYYY-MM-DD")
	status := fs.String("status", "", "present, absent or late")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.restore(ctx); err != nil {
		return err
	}

	records, err := a.attendanceService.History(ctx, attendance.HistoryFilter{StartDate: *from, EndDate: *to, Status: *status})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No attendance records")
		return nil
	}
	if err := a.printRecords(records); err != nil {
		return err
	}

	totals := attendance.Summarize(records)
	fmt.Fprintf(a.out, "\n%d days: %d present, %d late, %d absent (%.1f%% attended)\n",
		totals.Total, totals.Present, totals.Late, totals.Absent, totals.Percentage)
	return nil
}

func (a *app) stats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	month := fs.String("month", "", "month, YYYY-MM (default: current)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.restore(ctx); err != nil {
		return err
	}

	stats, err := a.attendanceService.Stats(ctx, attendance.StatsFilter{Month: *month})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Present\t%d\n", stats.Present)
	fmt.Fprintf(w, "Late\t%d\n", stats.Late)
	fmt.Fprintf(w, "Absent\t%d\n", stats.Absent)
	fmt.Fprintf(w, "Total\t%d\n", stats.Total)
	fmt.Fprintf(w, "Attendance\t%.1f%%\n", stats.Percentage)
	return w.Flush()
}

func (a *app) printRecords(records []attendance.Record) error {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSTATUS\tIN\tOUT\tWORKED")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Date, r.Status, clock(r.CheckInTime), clock(r.CheckOutTime), r.FormatWorkDuration())
	}
	return w.Flush()
}

func clock(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("15:04")
}

// restore loads the stored session, which every authenticated command needs.
func (a *app) restore(ctx context.Context) error {
	if _, err := a.authService.Restore(ctx); err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			return errors.New("not signed in, run 'attendctl login' first")
		}
		return err
	}
	return nil
}

func (a *app) readLine(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	line, err := a.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword hides input on a terminal and falls back to a plain line otherwise.
func (a *app) readPassword(prompt string) (string, error) {
	f, ok := a.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return a.readLine(prompt)
	}

	fmt.Fprint(a.out, prompt)
	raw, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
