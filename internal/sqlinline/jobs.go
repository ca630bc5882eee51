package sqlinline

// Lifecycle guards live in the statements themselves: the task id attaches
// only to a pending record, and neither terminal state can overwrite the
// other. Re-running a terminal write with the same payload is harmless.

const QMarkJobProcessing = `--sql 6bd26d60-1f58-4b67-8416-a6e5422941cd
update video_jobs
set status = 'processing',
    external_task_id = $2::text,
    updated_at = now()
where id = $1::uuid
  and status = 'pending';
`

const QCompleteJob = `--sql 487336b7-73eb-4b3c-9117-9bd88dd6bdd1
update video_jobs
set status = 'completed',
    result_url = $2::text,
    thumbnail_url = coalesce(nullif($3::text, ''), thumbnail_url),
    error_message = null,
    updated_at = now()
where id = $1::uuid
  and status <> 'failed';
`

const QFailJob = `--sql 0ffa4c8a-981e-4755-810c-445712dffa2e
update video_jobs
set status = 'failed',
    error_message = $2::text,
    updated_at = now()
where id = $1::uuid
  and status <> 'completed';
`

const QSelectJobByID = `--sql e898a9df-7482-4414-82d0-ac1596b33de6
select id, account_id, prompt, orientation, size, duration_seconds,
       coalesce(external_task_id, ''), status,
       coalesce(result_url, ''), coalesce(thumbnail_url, ''), coalesce(error_message, ''),
       created_at, updated_at
from video_jobs
where id = $1::uuid;
`

const QSelectJobByTaskID = `--sql 9397cd43-0ff6-4d08-a835-ca89a212218b
select id, account_id, prompt, orientation, size, duration_seconds,
       coalesce(external_task_id, ''), status,
       coalesce(result_url, ''), coalesce(thumbnail_url, ''), coalesce(error_message, ''),
       created_at, updated_at
from video_jobs
where account_id = $1::uuid and external_task_id = $2::text;
`

const QListJobsByAccount = `--sql 0545e162-e3ba-4749-8d49-8d797e16da31
select id, account_id, prompt, orientation, size, duration_seconds,
       coalesce(external_task_id, ''), status,
       coalesce(result_url, ''), coalesce(thumbnail_url, ''), coalesce(error_message, ''),
       created_at, updated_at
from video_jobs
where account_id = $1::uuid
order by created_at desc
limit $2::int;
`
