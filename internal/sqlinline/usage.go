package sqlinline

const QInsertUsageRecord = `--sql 4cc00a34-da28-4fa9-9619-71474b1ceaa0
insert into usage_records (id, user_id, test_id, test_name, is_free_test_used, created_at)
values ($1::uuid, nullif($2::text, '')::uuid, $3::text, $4::text, $5::boolean, $6::timestamptz);
`

const QSelectRecentUsage = `--sql 527e833c-26de-44bb-b50f-33e416ace31f
select id, coalesce(user_id::text, '') as user_id, test_id, test_name, is_free_test_used, created_at
from usage_records
order by created_at desc
limit $1::int;
`

const QSelectUsageSummary = `--sql 95c962fa-f6e9-4433-acd8-ceafa2a40c87
select
    count(*) as total,
    count(*) filter (where is_free_test_used) as free_slots,
    count(distinct user_id) as distinct_users
from usage_records;
`

const QSelectUsageByTest = `--sql b2217518-4b62-40c3-b663-c3536a325550
select test_id, count(*)
from usage_records
group by test_id
order by count(*) desc;
`
