package sqlinline

// QClaimStaleProcessingJob picks one job that has been sitting in
// 'processing' past the staleness threshold and bumps its updated_at so
// concurrent reconcilers skip it. FOR UPDATE SKIP LOCKED keeps claims
// disjoint without a coordinator.
const QClaimStaleProcessingJob = `--sql b9f68428-93ca-4f97-9177-e4f2621b60e3
with stale as (
    select id
    from video_jobs
    where status = 'processing'
      and external_task_id is not null
      and updated_at < now() - ($1::int * interval '1 minute')
    order by updated_at asc
    for update skip locked
    limit 1
),
claimed as (
    update video_jobs
    set updated_at = now()
    where id in (select id from stale)
    returning id, account_id, external_task_id
)
select id, account_id, external_task_id from claimed;
`
