package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/sm8ta/patient_records/internal/core/services"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password, demo string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an email and password or a demo account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				session domain.Session
				err     error
			)
			if demo != "" {
				session, err = c.core.Controller.LoginAs(cmd.Context(), domain.UserRole(demo))
			} else {
				session, err = c.core.Controller.Login(cmd.Context(), email, password)
			}
			if err != nil {
				return report(err, domain.MsgLoginFailed)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", session.User.Name, session.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&demo, "demo", "", "sign in as a demo account: admin or user")
	cmd.MarkFlagsMutuallyExclusive("demo", "email")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.core.Controller.Dispatch(cmd.Context(), services.Logout{}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			u := c.core.Controller.CurrentSession().User
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s id=%s\n", u.Name, u.Email, u.Role, u.ID)
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List patients",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			list := c.core.Controller.List()
			if err := list.Refresh(cmd.Context()); err != nil {
				return report(err, domain.MsgFetchFailed)
			}
			renderPatients(cmd.OutOrStdout(), list.Patients())
			return nil
		},
	}
}

type patientFlags struct {
	name, email, address, dateOfBirth, registeredDate string
}

func (f *patientFlags) bind(cmd *cobra.Command, registeredDefault string) {
	cmd.Flags().StringVar(&f.name, "name", "", "patient name")
	cmd.Flags().StringVar(&f.email, "email", "", "patient email")
	cmd.Flags().StringVar(&f.address, "address", "", "postal address")
	cmd.Flags().StringVar(&f.dateOfBirth, "dob", "", "date of birth, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.registeredDate, "registered", registeredDefault, "registration date, YYYY-MM-DD")
}

// apply overwrites only the fields given on the command line.
func (f *patientFlags) apply(cmd *cobra.Command, req *domain.PatientRequest) {
	set := func(flag string, dst *string, v string) {
		if cmd.Flags().Changed(flag) {
			*dst = v
		}
	}
	set("name", &req.Name, f.name)
	set("email", &req.Email, f.email)
	set("address", &req.Address, f.address)
	set("dob", &req.DateOfBirth, f.dateOfBirth)
	set("registered", &req.RegisteredDate, f.registeredDate)
}

func (c *cli) addCmd() *cobra.Command {
	var flags patientFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a patient",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			ctl := c.core.Controller
			if err := ctl.Dispatch(cmd.Context(), services.AddPatient{}); err != nil {
				return err
			}

			req := domain.PatientRequest{
				Name:           flags.name,
				Email:          flags.email,
				Address:        flags.address,
				DateOfBirth:    flags.dateOfBirth,
				RegisteredDate: flags.registeredDate,
			}
			if err := ctl.Dispatch(cmd.Context(), services.Submit{Request: req}); err != nil {
				return report(err, domain.MsgSaveFailed)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", req.Name)
			return nil
		},
	}

	flags.bind(cmd, time.Now().UTC().Format(domain.DateLayout))
	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	var flags patientFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a patient; unset flags keep their current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			ctl := c.core.Controller
			if err := ctl.List().Refresh(cmd.Context()); err != nil {
				return report(err, domain.MsgFetchFailed)
			}
			patient, ok := ctl.List().Find(args[0])
			if !ok {
				return fmt.Errorf("no patient with id %s", args[0])
			}
			if err := ctl.Dispatch(cmd.Context(), services.EditPatient{Patient: patient}); err != nil {
				return err
			}

			req := patient.Request()
			flags.apply(cmd, &req)
			if err := ctl.Dispatch(cmd.Context(), services.Submit{Request: req}); err != nil {
				return report(err, domain.MsgSaveFailed)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", req.Name)
			return nil
		},
	}

	flags.bind(cmd, "")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure you want to delete this patient?") {
				return nil
			}

			ctl := c.core.Controller
			if err := ctl.List().Refresh(cmd.Context()); err != nil {
				return report(err, domain.MsgFetchFailed)
			}
			if err := ctl.DeletePatient(cmd.Context(), args[0]); err != nil {
				return report(err, domain.MsgDeleteFailed)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s, %d patients left\n", args[0], len(ctl.List().Patients()))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func renderPatients(w io.Writer, patients []domain.Patient) {
	if len(patients) == 0 {
		fmt.Fprintln(w, "No patients found. Add a new patient to get started.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tADDRESS\tDATE OF BIRTH\tREGISTERED")
	for _, p := range patients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, p.Email, strings.ReplaceAll(p.Address, "\n", ", "), p.DateOfBirth, p.RegisteredDate)
	}
	tw.Flush()
}
