package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"text/tabwriter"

	pkgerrors "github.com/pkg/errors"

	"github.com/MikeMC777/storefront-ecom/internal/cart"
	"github.com/MikeMC777/storefront-ecom/internal/checkout"
	"github.com/MikeMC777/storefront-ecom/internal/client"
	"github.com/MikeMC777/storefront-ecom/internal/localstore"
	"github.com/MikeMC777/storefront-ecom/internal/wishlist"
)

const sessionKey = "session"

type app struct {
	api   *client.Client
	store localstore.Persister
	out   io.Writer
	log   *slog.Logger
}

// savedSession is what login leaves on disk.
type savedSession struct {
	Token  string `json:"token"`
	Email  string `json:"email"`
	UserID string `json:"userId"`
}

var errUsage = errors.New("unknown command, run shopctl -h for usage")

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "login":
		return a.login(ctx, args[1:])
	case "logout":
		return a.store.Write(sessionKey, []byte("{}"))
	case "cart":
		return a.cart(ctx, args[1:])
	case "wish":
		return a.wish(ctx, args[1:])
	case "checkout":
		return a.checkout(ctx, args[1:])
	default:
		return errUsage
	}
}

func (a *app) session() (savedSession, error) {
	var s savedSession
	data, ok, err := a.store.Read(sessionKey)
	if err != nil || !ok {
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, pkgerrors.Wrap(err, "decode session")
	}
	return s, nil
}

// authed returns the API client carrying the saved session, if any.
func (a *app) authed() (*client.Client, savedSession, error) {
	s, err := a.session()
	if err != nil {
		return nil, s, err
	}
	if s.Token == "" {
		return a.api, s, nil
	}
	return a.api.WithToken(s.Token), s, nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login needs -email and -password")
	}
	resp, err := a.api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	data, err := json.Marshal(savedSession{Token: resp.Token, Email: resp.Email, UserID: resp.UserID})
	if err != nil {
		return err
	}
	if err := a.store.Write(sessionKey, data); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s until %s\n", resp.Email, resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func (a *app) cart(ctx context.Context, args []string) error {
	c, err := cart.New(a.store)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return printCart(a.out, c)
	}

	fs := flag.NewFlagSet("cart "+args[0], flag.ContinueOnError)
	id := fs.String("id", "", "product id")
	qty := fs.Int("qty", 1, "quantity")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	needID := func() error {
		if *id == "" {
			return errors.New("cart " + args[0] + " needs -id")
		}
		return nil
	}

	switch args[0] {
	case "list":
	case "add":
		if err := needID(); err != nil {
			return err
		}
		p, err := a.api.Product(ctx, *id)
		if err != nil {
			return err
		}
		if err := c.Add(cart.Item{ProductID: p.ID, Title: p.Title, UnitPrice: p.Price, Image: p.MainImage}, *qty); err != nil {
			return err
		}
	case "rm":
		if err := needID(); err != nil {
			return err
		}
		if err := c.Remove(*id); err != nil {
			return err
		}
	case "set":
		if err := needID(); err != nil {
			return err
		}
		if err := c.SetQuantity(*id, *qty); err != nil {
			return err
		}
	case "clear":
		if err := c.Clear(); err != nil {
			return err
		}
	default:
		return errUsage
	}
	return printCart(a.out, c)
}

func printCart(w io.Writer, c *cart.Store) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tTITLE\tQTY\tUNIT PRICE")
	for _, l := range c.Lines() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.ProductID, l.Title, l.Quantity, l.UnitPrice.StringFixed(2))
	}
	t := c.Totals()
	fmt.Fprintf(tw, "\t\t%d\t%s\n", t.ItemCount, t.Total.StringFixed(2))
	return tw.Flush()
}

func (a *app) wish(ctx context.Context, args []string) error {
	ws, err := wishlist.NewStore(a.store)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return printWishlist(a.out, ws)
	}

	fs := flag.NewFlagSet("wish "+args[0], flag.ContinueOnError)
	id := fs.String("id", "", "product id")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	switch args[0] {
	case "list":
	case "toggle":
		if *id == "" {
			return errors.New("wish toggle needs -id")
		}
		p, err := a.api.Product(ctx, *id)
		if err != nil {
			return err
		}
		added, err := ws.Toggle(wishlist.EntryFrom(*p))
		if err != nil {
			return err
		}
		if added {
			fmt.Fprintf(a.out, "saved %s\n", p.Title)
		} else {
			fmt.Fprintf(a.out, "removed %s\n", p.Title)
		}
		return a.mirrorToggle(ctx, p.ID, added)
	case "move":
		if *id == "" {
			return errors.New("wish move needs -id")
		}
		c, err := cart.New(a.store)
		if err != nil {
			return err
		}
		if err := ws.MoveToCart(*id, c); err != nil {
			return err
		}
		return printCart(a.out, c)
	case "pull":
		return a.pullWishlist(ctx, ws)
	case "push":
		return a.pushWishlist(ctx, ws)
	default:
		return errUsage
	}
	return printWishlist(a.out, ws)
}

// mirrorToggle applies a local toggle to the account's wishlist when signed
// in. A failure there leaves the local change in place.
func (a *app) mirrorToggle(ctx context.Context, productID string, added bool) error {
	api, s, err := a.authed()
	if err != nil || s.Token == "" {
		return err
	}
	if added {
		_, err = api.AddToWishlist(ctx, productID)
	} else {
		err = api.RemoveFromWishlist(ctx, productID)
	}
	var se *client.StatusError
	if errors.As(err, &se) && (se.Status == http.StatusConflict || se.Status == http.StatusNotFound) {
		return nil
	}
	if err != nil {
		a.log.Warn("[WISHLIST] account not updated", "product", productID, "err", err)
	}
	return nil
}

// pullWishlist replaces the local wishlist with the account's.
func (a *app) pullWishlist(ctx context.Context, ws *wishlist.Store) error {
	api, s, err := a.authed()
	if err != nil {
		return err
	}
	if s.Token == "" {
		return errors.New("not signed in")
	}
	products, err := api.Wishlist(ctx)
	if err != nil {
		return err
	}
	entries := make([]wishlist.Entry, 0, len(products))
	for _, p := range products {
		entries = append(entries, wishlist.EntryFrom(p))
	}
	if err := ws.Replace(entries); err != nil {
		return err
	}
	return printWishlist(a.out, ws)
}

// pushWishlist saves every local entry to the account. Entries the account
// already has are skipped.
func (a *app) pushWishlist(ctx context.Context, ws *wishlist.Store) error {
	api, s, err := a.authed()
	if err != nil {
		return err
	}
	if s.Token == "" {
		return errors.New("not signed in")
	}
	pushed := 0
	for _, e := range ws.Entries() {
		_, err := api.AddToWishlist(ctx, e.ProductID)
		var se *client.StatusError
		switch {
		case errors.As(err, &se) && se.Status == http.StatusConflict:
		case err != nil:
			return pkgerrors.Wrapf(err, "save %s", e.ProductID)
		default:
			pushed++
		}
	}
	fmt.Fprintf(a.out, "saved %d of %d products to your account\n", pushed, len(ws.Entries()))
	return nil
}

func printWishlist(w io.Writer, ws *wishlist.Store) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tTITLE\tPRICE")
	for _, e := range ws.Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ProductID, e.Title, e.Price.StringFixed(2))
	}
	return tw.Flush()
}

func (a *app) checkout(ctx context.Context, args []string) error {
	var form checkout.Form
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.StringVar(&form.Name, "name", "", "first name")
	fs.StringVar(&form.Lastname, "lastname", "", "last name")
	fs.StringVar(&form.Phone, "phone", "", "phone number")
	fs.StringVar(&form.Email, "email", "", "email address")
	fs.StringVar(&form.Company, "company", "", "company")
	fs.StringVar(&form.Address, "address", "", "street address")
	fs.StringVar(&form.Apartment, "apartment", "", "apartment")
	fs.StringVar(&form.PostalCode, "postal", "", "postal code")
	fs.StringVar(&form.City, "city", "", "city")
	fs.StringVar(&form.Country, "country", "", "country")
	fs.StringVar(&form.OrderNotice, "notice", "", "note for the order")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := cart.New(a.store)
	if err != nil {
		return err
	}
	api, s, err := a.authed()
	if err != nil {
		return err
	}

	flow := &checkout.Flow{API: api, Cart: c, Log: a.log}
	id, err := flow.Submit(ctx, form, s.Email)
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		for _, f := range verr.Fields {
			fmt.Fprintf(a.out, "  %s %s\n", f.Field, f.Message)
		}
		return errors.New("checkout form is invalid")
	case err != nil && id == "":
		return err
	case err != nil:
		a.log.Warn("[CHECKOUT] order placed but cart not cleared", "order", id, "err", err)
	}
	fmt.Fprintf(a.out, "order %s placed\n", id)
	return nil
}
