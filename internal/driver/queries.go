package driver

var IndexQueries = []string{
	"CREATE INDEX ON :Sentence(uuid);",
	"CREATE INDEX ON :AspectWindow(uuid);",
	"CREATE INDEX ON :EvaluationRun(uuid);",
	"CREATE INDEX ON :Mismatch(uuid);",

	"CREATE INDEX ON :Sentence(group_id);",
	"CREATE INDEX ON :AspectWindow(group_id);",
	"CREATE INDEX ON :AspectWindow(polarity);",
}

const (
	SaveSentenceQuery = `
		MERGE (s:Sentence {uuid: $uuid})
		SET s.group_id = $group_id,
			s.sentence_id = $sentence_id,
			s.text = $text,
			s.text_raw = $text_raw,
			s.created_at = $created_at
		RETURN s.uuid AS uuid
	`

	SaveAspectWindowQuery = `
		MATCH (s:Sentence {uuid: $sentence_uuid})
		MERGE (a:AspectWindow {uuid: $uuid})
		SET a.group_id = $group_id,
			a.aspect = $aspect,
			a.polarity = $polarity,
			a.window = $window,
			a.input_full = $input_full,
			a.aligned = $aligned,
			a.created_at = $created_at
		MERGE (s)-[:HAS_ASPECT]->(a)
		RETURN a.uuid AS uuid
	`

	SaveEvaluationRunQuery = `
		MERGE (r:EvaluationRun {uuid: $uuid})
		SET r.created_at = $created_at,
			r.precision = $precision,
			r.recall = $recall,
			r.f1 = $f1,
			r.tp = $tp,
			r.fp = $fp,
			r.fn = $fn,
			r.scored = $scored,
			r.gold_sentences = $gold_sentences,
			r.pred_sentences = $pred_sentences,
			r.truncated = $truncated,
			r.total_mismatches = $total_mismatches
		RETURN r.uuid AS uuid
	`

	SaveMismatchQuery = `
		MATCH (r:EvaluationRun {uuid: $run_uuid})
		MERGE (m:Mismatch {uuid: $uuid})
		SET m.index = $index,
			m.sentence_id = $sentence_id,
			m.sentence = $sentence,
			m.gold = $gold,
			m.pred = $pred,
			m.missing = $missing,
			m.extra = $extra
		MERGE (r)-[:HAS_MISMATCH]->(m)
		RETURN m.uuid AS uuid
	`

	CountGroupAspectsQuery = `
		MATCH (s:Sentence {group_id: $group_id})-[:HAS_ASPECT]->(a:AspectWindow)
		RETURN count(a) AS aspects
	`
)
