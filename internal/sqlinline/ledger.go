package sqlinline

// QDebitAccount spends one credit only when the balance covers it. Matching
// zero rows means either no such account or an empty balance; the caller
// disambiguates with QSelectAccountBalance.
const QDebitAccount = `--sql 47bc68c2-edbd-48df-baab-7fda2b15510a
update accounts
set credit_balance = credit_balance - 1,
    updated_at = now()
where id = $1::uuid
  and credit_balance >= 1
returning credit_balance;
`

const QSelectAccountBalance = `--sql 62c2d4fe-75bf-40a7-90fd-b42e99a15976
select credit_balance from accounts where id = $1::uuid;
`

const QInsertVideoJob = `--sql 6a4c72f6-7449-4721-9fa5-92999db851b0
insert into video_jobs (id, account_id, prompt, orientation, size, duration_seconds, status, created_at, updated_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::int, $7::text, now(), now());
`

// QRefundMarkJobFailed is the guard half of the submit-failure compensation:
// it matches only while the job is still pending, so a second refund attempt
// matches nothing.
const QRefundMarkJobFailed = `--sql 02485664-e0e9-4f43-8ce3-8cd04c0a264a
update video_jobs
set status = 'failed',
    error_message = $2::text,
    updated_at = now()
where id = $1::uuid
  and status = 'pending'
returning account_id;
`

const QRefundCredit = `--sql cfb9ad35-b360-44e1-ac72-56b50813b207
update accounts
set credit_balance = credit_balance + 1,
    updated_at = now()
where id = $1::uuid;
`

const QSelectAccount = `--sql 1c6bf1be-b0e0-4a90-9eae-0c05ce875a72
select id, display_name, credit_balance, created_at, updated_at
from accounts
where id = $1::uuid;
`
