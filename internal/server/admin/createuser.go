// Package admin implements out-of-band maintenance commands, such as creating
// staff users without going through the public registration mutation.
package admin

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophcoach/internal/common"
	"github.com/dmitrijs2005/gophcoach/internal/server/models"
	"github.com/dmitrijs2005/gophcoach/internal/server/services"
	"golang.org/x/crypto/bcrypt"
)

// CreateUserFlags lists the flags understood by the createuser command.
var CreateUserFlags = []string{"-username", "-email", "-first-name", "-last-name", "-staff"}

var (
	ErrEmptyUsername    = errors.New("username must not be empty")
	ErrEmptyPassword    = errors.New("password must not be empty")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

type UserCreator interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

type CreateUserCommand struct {
	users  UserCreator
	reader *bufio.Reader
	out    io.Writer
	cost   int
}

func NewCreateUserCommand(users UserCreator, in io.Reader, out io.Writer) *CreateUserCommand {
	return &CreateUserCommand{
		users:  users,
		reader: bufio.NewReader(in),
		out:    out,
		cost:   bcrypt.DefaultCost,
	}
}

// Run parses args, prompts for whatever is missing (the password is always
// prompted for, twice) and stores the user.
func (c *CreateUserCommand) Run(ctx context.Context, args []string) (*models.User, error) {
	user := &models.User{}

	fs := flag.NewFlagSet("createuser", flag.ContinueOnError)
	fs.SetOutput(c.out)
	fs.StringVar(&user.Username, "username", "", "username")
	fs.StringVar(&user.Email, "email", "", "email address")
	fs.StringVar(&user.FirstName, "first-name", "", "first name")
	fs.StringVar(&user.LastName, "last-name", "", "last name")
	fs.BoolVar(&user.IsStaff, "staff", false, "grant staff status")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	if user.Username == "" {
		if user.Username, err = getSimpleText(c.reader, "Username", c.out); err != nil {
			return nil, err
		}
	}
	if user.Username == "" {
		return nil, ErrEmptyUsername
	}
	if user.Email == "" {
		if user.Email, err = getSimpleText(c.reader, "Email", c.out); err != nil {
			return nil, err
		}
	}

	password, err := c.readNewPassword()
	if err != nil {
		return nil, err
	}
	user.PasswordHash, err = services.HashPassword(string(password), c.cost)
	common.WipeByteArray(password)
	if err != nil {
		return nil, err
	}

	created, err := c.users.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	fmt.Fprintf(c.out, "User %q created with id %d\n", created.Username, created.ID)
	return created, nil
}

func (c *CreateUserCommand) readNewPassword() ([]byte, error) {
	password, err := getPassword("Password", c.out)
	if err != nil {
		return nil, err
	}
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}

	confirm, err := getPassword("Password (again)", c.out)
	if err != nil {
		common.WipeByteArray(password)
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		common.WipeByteArray(password)
		return nil, ErrPasswordMismatch
	}
	return password, nil
}
