package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	apperrors "customer-registry/internal/errors"
	"customer-registry/internal/model"
	"customer-registry/pkg/db/transactor"
)

const pgUniqueViolationCode = "23505"

// CustomerRepository persists the customer aggregate. Update applies
// the supplied child-collection diff so only changed rows are touched.
type CustomerRepository interface {
	FindByName(context.Context, string) (*model.Customer, error)
	FindAll(context.Context) ([]*model.Customer, error)
	Create(context.Context, *model.Customer) error
	Update(context.Context, *model.Customer, *model.CustomerDiff) error
	DeleteByName(context.Context, string) error
}

type postgresCustomerRepository struct {
	trx      transactor.PgxTransactor
	executor transactor.PgxWithinTransactionExecutor
}

// NewPostgresCustomerRepository builds customer repository over postgres.
// Every write command runs within a single transaction, so all child
// mutations of one command commit together or not at all.
func NewPostgresCustomerRepository(trx transactor.PgxTransactor, executor transactor.PgxWithinTransactionExecutor) CustomerRepository {
	return &postgresCustomerRepository{trx: trx, executor: executor}
}

func (r *postgresCustomerRepository) FindByName(ctx context.Context, name string) (*model.Customer, error) {
	q := "SELECT id, customer_name, salutation, sales_person FROM customers WHERE customer_name = $1"

	var c model.Customer
	row := r.executor.Executor(ctx).QueryRow(ctx, q, name)
	if err := row.Scan(&c.ID, &c.Name, &c.Salutation, &c.SalesPerson); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadChildren(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresCustomerRepository) FindAll(ctx context.Context) ([]*model.Customer, error) {
	q := "SELECT id, customer_name, salutation, sales_person FROM customers ORDER BY customer_name"

	rows, err := r.executor.Executor(ctx).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]*model.Customer, 0)
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Salutation, &c.SalesPerson); err != nil {
			return nil, err
		}
		customers = append(customers, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, c := range customers {
		if err := r.loadChildren(ctx, c); err != nil {
			return nil, err
		}
	}
	return customers, nil
}

func (r *postgresCustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	err := r.trx.WithinTransaction(ctx, func(ctx context.Context) error {
		q := "INSERT INTO customers(id, customer_name, salutation, sales_person) VALUES($1, $2, $3, $4)"
		if _, err := r.executor.Executor(ctx).Exec(ctx, q, c.ID, c.Name, c.Salutation, c.SalesPerson); err != nil {
			return err
		}

		for _, e := range c.Emails {
			if err := r.insertEmail(ctx, c.ID, e); err != nil {
				return err
			}
		}

		for _, p := range c.Phones {
			if err := r.insertPhone(ctx, c.ID, p); err != nil {
				return err
			}
		}

		for _, a := range c.Addresses {
			if err := r.insertAddress(ctx, c.ID, a); err != nil {
				return err
			}
		}
		return nil
	})
	return r.classify(err)
}

func (r *postgresCustomerRepository) Update(ctx context.Context, c *model.Customer, diff *model.CustomerDiff) error {
	err := r.trx.WithinTransaction(ctx, func(ctx context.Context) error {
		q := "UPDATE customers SET salutation = $1, sales_person = $2 WHERE id = $3"
		if _, err := r.executor.Executor(ctx).Exec(ctx, q, c.Salutation, c.SalesPerson, c.ID); err != nil {
			return err
		}

		if err := r.applyEmailActions(ctx, c.ID, diff); err != nil {
			return err
		}
		if err := r.applyPhoneActions(ctx, c.ID, diff); err != nil {
			return err
		}
		return r.applyAddressActions(ctx, c.ID, diff)
	})
	return r.classify(err)
}

func (r *postgresCustomerRepository) DeleteByName(ctx context.Context, name string) error {
	// child rows are removed by ON DELETE CASCADE
	q := "DELETE FROM customers WHERE customer_name = $1"
	comm, err := r.executor.Executor(ctx).Exec(ctx, q, name)
	if err != nil {
		return err
	}
	if comm.RowsAffected() == 0 {
		return apperrors.NewNotFoundErr(fmt.Sprintf("customer %s does not exist", name))
	}
	return nil
}

func (r *postgresCustomerRepository) applyEmailActions(ctx context.Context, customerID string, diff *model.CustomerDiff) error {
	for _, e := range diff.Emails.Insert {
		if err := r.insertEmail(ctx, customerID, e); err != nil {
			return err
		}
	}

	q := "UPDATE customer_emails SET is_primary = $1 WHERE id = $2"
	for _, e := range diff.Emails.Update {
		if _, err := r.executor.Executor(ctx).Exec(ctx, q, e.Primary, e.ID); err != nil {
			return err
		}
	}

	q = "DELETE FROM customer_emails WHERE id = $1"
	for _, e := range diff.Emails.Delete {
		if _, err := r.executor.Executor(ctx).Exec(ctx, q, e.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresCustomerRepository) applyPhoneActions(ctx context.Context, customerID string, diff *model.CustomerDiff) error {
	for _, p := range diff.Phones.Insert {
		if err := r.insertPhone(ctx, customerID, p); err != nil {
			return err
		}
	}

	q := "UPDATE customer_phones SET is_primary = $1 WHERE id = $2"
	for _, p := range diff.Phones.Update {
		if _, err := r.executor.Executor(ctx).Exec(ctx, q, p.Primary, p.ID); err != nil {
			return err
		}
	}

	q = "DELETE FROM customer_phones WHERE id = $1"
	for _, p := range diff.Phones.Delete {
		if _, err := r.executor.Executor(ctx).Exec(ctx, q, p.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresCustomerRepository) applyAddressActions(ctx context.Context, customerID string, diff *model.CustomerDiff) error {
	for _, a := range diff.Addresses.Insert {
		if err := r.insertAddress(ctx, customerID, a); err != nil {
			return err
		}
	}

	q := "UPDATE customer_addresses SET state = $1, country = $2 WHERE id = $3"
	for _, a := range diff.Addresses.Update {
		if _, err := r.executor.Executor(ctx).Exec(ctx, q, a.State, a.Country, a.ID); err != nil {
			return err
		}
	}

	q = "DELETE FROM customer_addresses WHERE id = $1"
	for _, a := range diff.Addresses.Delete {
		if _, err := r.executor.Executor(ctx).Exec(ctx, q, a.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresCustomerRepository) insertEmail(ctx context.Context, customerID string, e model.Email) error {
	q := "INSERT INTO customer_emails(id, customer_id, email_address, is_primary) VALUES($1, $2, $3, $4)"
	_, err := r.executor.Executor(ctx).Exec(ctx, q, e.ID, customerID, e.Address, e.Primary)
	return err
}

func (r *postgresCustomerRepository) insertPhone(ctx context.Context, customerID string, p model.Phone) error {
	q := "INSERT INTO customer_phones(id, customer_id, phone_number, is_primary) VALUES($1, $2, $3, $4)"
	_, err := r.executor.Executor(ctx).Exec(ctx, q, p.ID, customerID, p.Number, p.Primary)
	return err
}

func (r *postgresCustomerRepository) insertAddress(ctx context.Context, customerID string, a model.Address) error {
	q := `INSERT INTO customer_addresses(id, customer_id, address_line, city, state, country, pincode)
		  VALUES($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.executor.Executor(ctx).Exec(ctx, q, a.ID, customerID, a.Line, a.City, a.State, a.Country, a.Pincode)
	return err
}

func (r *postgresCustomerRepository) loadChildren(ctx context.Context, c *model.Customer) error {
	emails := make([]model.Email, 0)
	q := "SELECT id, email_address, is_primary FROM customer_emails WHERE customer_id = $1"
	rows, err := r.executor.Executor(ctx).Query(ctx, q, c.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var e model.Email
		if err := rows.Scan(&e.ID, &e.Address, &e.Primary); err != nil {
			rows.Close()
			return err
		}
		emails = append(emails, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	phones := make([]model.Phone, 0)
	q = "SELECT id, phone_number, is_primary FROM customer_phones WHERE customer_id = $1"
	rows, err = r.executor.Executor(ctx).Query(ctx, q, c.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var p model.Phone
		if err := rows.Scan(&p.ID, &p.Number, &p.Primary); err != nil {
			rows.Close()
			return err
		}
		phones = append(phones, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	addresses := make([]model.Address, 0)
	q = "SELECT id, address_line, city, state, country, pincode FROM customer_addresses WHERE customer_id = $1"
	rows, err = r.executor.Executor(ctx).Query(ctx, q, c.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(&a.ID, &a.Line, &a.City, &a.State, &a.Country, &a.Pincode); err != nil {
			rows.Close()
			return err
		}
		addresses = append(addresses, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	c.Emails = emails
	c.Phones = phones
	c.Addresses = addresses
	return nil
}

// classify converts unique violations to conflict errors, any other
// persistence failure is surfaced as is.
func (r *postgresCustomerRepository) classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		return apperrors.NewConflictErr(fmt.Sprintf("identity is already claimed - %s", pgErr.Detail))
	}
	return err
}
