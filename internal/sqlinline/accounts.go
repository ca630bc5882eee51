package sqlinline

// QUpsertAccountAndGrant creates the account when missing and adds the
// granted credits in the same statement. Used only by the grantcredit CLI;
// the service itself never increases a balance outside the refund path.
const QUpsertAccountAndGrant = `--sql 23084004-59d3-4460-99ad-323aef9e27da
insert into accounts (id, display_name, credit_balance, created_at, updated_at)
values ($1::uuid, coalesce(nullif($2::text, ''), 'account'), greatest($3::int, 0), now(), now())
on conflict (id) do update set
    display_name = coalesce(nullif($2::text, ''), accounts.display_name),
    credit_balance = accounts.credit_balance + greatest($3::int, 0),
    updated_at = now()
returning id, display_name, credit_balance;
`
