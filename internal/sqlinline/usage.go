package sqlinline

const QInsertUsageEvent = `--sql 708fa617-3102-49ca-bf12-5b61a9f5b1e3
insert into usage_events(id, account_id, job_id, event_type, success, latency_ms, country, created_at, properties)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::text, $4::boolean, $5::int, nullif($6::text, ''), now(), coalesce($7::jsonb, '{}'::jsonb));
`

const QAccountStats = `--sql 225f21d6-2ab8-4261-b671-af0056fd0fd1
select
  count(*) filter (where j.status = 'completed')                                   as completed,
  count(*) filter (where j.status = 'failed')                                      as failed,
  count(*) filter (where j.status in ('pending', 'processing'))                    as in_flight,
  count(*) filter (where j.created_at >= now() - interval '24 hours')              as last_24h,
  coalesce((select count(*) from usage_events u
            where u.account_id = $1::uuid
              and u.event_type = 'video_submit'
              and u.created_at >= now() - interval '24 hours'), 0)                 as submits_24h
from video_jobs j
where j.account_id = $1::uuid;
`
