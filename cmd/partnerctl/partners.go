package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/vitrineapp/partner-go/internal/domain/model"
)

func runRegisterPartner(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("register-partner", flag.ContinueOnError)
	name := fs.String("name", "", "company name (required)")
	contact := fs.String("contact", "", "contact person name (required)")
	email := fs.String("email", "", "partner contact email (required)")
	phone := fs.String("phone", "", "contact phone")
	address := fs.String("address", "", "postal address")
	siret := fs.String("siret", "", "14-digit SIRET number (required)")
	commission := fs.Float64("commission", 0, "commission rate in percent")
	ownerEmail := fs.String("owner-email", "", "owner credential email (defaults to contact email)")
	ownerSecret := fs.String("owner-secret", "", "owner credential secret (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := &model.RegisterPartnerRequest{
		Partner: model.CreatePartnerRequest{
			Name:           *name,
			ContactName:    *contact,
			Email:          *email,
			Phone:          optional(*phone),
			Address:        optional(*address),
			SIRET:          *siret,
			CommissionRate: *commission,
		},
		OwnerEmail:  *ownerEmail,
		OwnerSecret: *ownerSecret,
	}

	return withServices(cmdCtx, func(ctx context.Context, services serviceSet) error {
		result, err := services.Registration.Register(ctx, req)
		if err != nil {
			return err
		}
		if !result.WelcomeEnqueued {
			cmdCtx.Logger.Warn("welcome notification was not enqueued", "partner_id", result.Partner.ID)
		}
		return printJSON(result.Partner)
	})
}

func runApprovePartner(cmdCtx *commandContext, args []string) error {
	id, err := parseIDFlag("approve-partner", args)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, func(ctx context.Context, services serviceSet) error {
		partner, err := services.Lifecycle.Approve(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(partner)
	})
}

func runRejectPartner(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("reject-partner", flag.ContinueOnError)
	id := fs.String("id", "", "partner id (required)")
	reason := fs.String("reason", "", "rejection reason shown to the partner")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}
	return withServices(cmdCtx, func(ctx context.Context, services serviceSet) error {
		partner, err := services.Lifecycle.Reject(ctx, *id, optional(*reason))
		if err != nil {
			return err
		}
		return printJSON(partner)
	})
}

func runSuspendPartner(cmdCtx *commandContext, args []string) error {
	id, err := parseIDFlag("suspend-partner", args)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, func(ctx context.Context, services serviceSet) error {
		partner, err := services.Lifecycle.Suspend(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(partner)
	})
}

func runListPartners(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-partners", flag.ContinueOnError)
	status := fs.String("status", "", "filter by status (pending, approved, rejected, suspended)")
	q := fs.String("q", "", "substring match on company name")
	limit := fs.Int("limit", 50, "maximum rows")
	offset := fs.Int("offset", 0, "rows to skip")
	includeDeleted := fs.Bool("include-deleted", false, "include soft-deleted partners")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := model.PartnersListOptions{
		Limit:          *limit,
		Offset:         *offset,
		IncludeDeleted: *includeDeleted,
	}
	if *q != "" {
		opts.Q = q
	}
	if *status != "" {
		st := model.PartnerStatus(*status)
		if !st.Valid() {
			return fmt.Errorf("invalid status %q", *status)
		}
		opts.Status = &st
	}

	return withServices(cmdCtx, func(ctx context.Context, services serviceSet) error {
		partners, err := services.Lifecycle.List(ctx, opts)
		if err != nil {
			return err
		}
		return printPartnerTable(partners)
	})
}

func runSetCommission(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("set-commission", flag.ContinueOnError)
	id := fs.String("id", "", "partner id (required)")
	rate := fs.Float64("rate", -1, "commission rate in percent (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}
	if *rate < 0 {
		return errors.New("-rate is required")
	}
	return withServices(cmdCtx, func(ctx context.Context, services serviceSet) error {
		partner, err := services.Lifecycle.UpdateCommissionRate(ctx, *id, *rate)
		if err != nil {
			return err
		}
		return printJSON(partner)
	})
}

func runDeletePartner(cmdCtx *commandContext, args []string) error {
	id, err := parseIDFlag("delete-partner", args)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, func(ctx context.Context, services serviceSet) error {
		deleted, err := services.Lifecycle.SoftDelete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("partner %s not found", id)
		}
		return writef(os.Stdout, "partner %s deleted\n", id)
	})
}

func runAddOffering(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("add-offering", flag.ContinueOnError)
	partnerID := fs.String("partner", "", "partner id (required)")
	name := fs.String("name", "", "offering name (required)")
	description := fs.String("description", "", "offering description")
	priceCents := fs.Int64("price-cents", 0, "price in cents")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := &model.CreateOfferingRequest{
		PartnerID:   *partnerID,
		Name:        *name,
		Description: optional(*description),
		PriceCents:  *priceCents,
	}
	return withServices(cmdCtx, func(ctx context.Context, services serviceSet) error {
		offering, err := services.Catalog.AddOffering(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(offering)
	})
}

func runListOfferings(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-offerings", flag.ContinueOnError)
	partnerID := fs.String("partner", "", "partner id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *partnerID == "" {
		return errors.New("-partner is required")
	}
	return withServices(cmdCtx, func(ctx context.Context, services serviceSet) error {
		offerings, err := services.Catalog.ListOfferings(ctx, *partnerID)
		if err != nil {
			return err
		}
		return printOfferingTable(offerings)
	})
}

func runRemoveOffering(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("remove-offering", flag.ContinueOnError)
	id := fs.String("id", "", "offering id (required)")
	partnerID := fs.String("partner", "", "partner id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *partnerID == "" {
		return errors.New("-id and -partner are required")
	}
	return withServices(cmdCtx, func(ctx context.Context, services serviceSet) error {
		removed, err := services.Catalog.RemoveOffering(ctx, *id, *partnerID)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("offering %s not found", *id)
		}
		return writef(os.Stdout, "offering %s removed\n", *id)
	})
}

func runPaymentsOnboard(cmdCtx *commandContext, args []string) error {
	id, err := parseIDFlag("payments-onboard", args)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, func(ctx context.Context, services serviceSet) error {
		if services.Payments == nil {
			return errors.New("payment provider is not configured")
		}
		link, err := services.Payments.StartOnboarding(ctx, id)
		if err != nil {
			return err
		}
		if link.ExpiresAt != nil {
			return writef(os.Stdout, "%s (expires %s)\n", link.URL, link.ExpiresAt.Format(time.RFC3339))
		}
		return writef(os.Stdout, "%s\n", link.URL)
	})
}

func runPaymentsStatus(cmdCtx *commandContext, args []string) error {
	id, err := parseIDFlag("payments-status", args)
	if err != nil {
		return err
	}
	return withServices(cmdCtx, func(ctx context.Context, services serviceSet) error {
		if services.Payments == nil {
			return errors.New("payment provider is not configured")
		}
		onboarded, err := services.Payments.RefreshOnboardingStatus(ctx, id)
		if err != nil {
			return err
		}
		status := "pending"
		if onboarded {
			status = "onboarded"
		}
		return writef(os.Stdout, "partner %s payment onboarding: %s\n", id, status)
	})
}

func parseIDFlag(cmdName string, args []string) (string, error) {
	fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)
	id := fs.String("id", "", "partner id (required)")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *id == "" {
		return "", errors.New("-id is required")
	}
	return *id, nil
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	return writef(os.Stdout, "%s\n", out)
}

func printPartnerTable(partners []*model.Partner) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tSTATUS\tEMAIL\tSIRET\tCOMMISSION\tCREATED"); err != nil {
		return err
	}
	for _, p := range partners {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			p.ID, p.Name, p.Status, p.Email, p.SIRET, p.CommissionRate,
			p.CreatedAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func printOfferingTable(offerings []*model.Offering) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tPRICE_CENTS\tACTIVE\tCREATED"); err != nil {
		return err
	}
	for _, o := range offerings {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%s\n",
			o.ID, o.Name, o.PriceCents, o.Active,
			o.CreatedAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return w.Flush()
}
