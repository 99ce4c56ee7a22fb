package dialogueRepository

const (
	queryCreateMessage = `
		INSERT INTO dialogue_messages (
			id,
			conversation_id,
			role,
			message,
			created_at
		) VALUES (
			:id,
			:conversation_id,
			:role,
			:message,
			:created_at
		)
	`

	queryGetMessagesByConversationID = `
		SELECT
			id,
			conversation_id,
			role,
			message,
			created_at
		FROM dialogue_messages
		WHERE conversation_id = :conversation_id
		ORDER BY created_at ASC
	`

	queryCreateSubmission = `
		INSERT INTO dialogue_submissions (
			id,
			base_intent,
			intent,
			slots,
			submitted_at
		) VALUES (
			:id,
			:base_intent,
			:intent,
			:slots,
			:submitted_at
		)
	`

	queryGetSubmissionsByBaseIntent = `
		SELECT
			id,
			base_intent,
			intent,
			slots,
			submitted_at
		FROM dialogue_submissions
		WHERE base_intent = :base_intent
		ORDER BY submitted_at ASC
	`

	queryGetAllSubmissions = `
		SELECT
			id,
			base_intent,
			intent,
			slots,
			submitted_at
		FROM dialogue_submissions
		ORDER BY submitted_at ASC
	`

	queryCreateMapping = `
		INSERT INTO intent_mappings (
			id,
			intent,
			phrases,
			priority,
			is_active,
			created_at,
			updated_at
		) VALUES (
			:id,
			:intent,
			:phrases,
			:priority,
			:is_active,
			:created_at,
			:updated_at
		)
	`

	queryUpdateMapping = `
		UPDATE intent_mappings
		SET
			intent = :intent,
			phrases = :phrases,
			priority = :priority,
			is_active = :is_active,
			updated_at = :updated_at
		WHERE id = :id
	`

	queryDeleteMapping = `
		DELETE FROM intent_mappings
		WHERE id = :id
	`

	queryGetMappingByID = `
		SELECT
			id,
			intent,
			phrases,
			priority,
			is_active,
			created_at,
			updated_at
		FROM intent_mappings
		WHERE id = :id
	`

	queryGetActiveMappings = `
		SELECT
			id,
			intent,
			phrases,
			priority,
			is_active,
			created_at,
			updated_at
		FROM intent_mappings
		WHERE is_active = TRUE
		ORDER BY priority ASC, created_at ASC
	`
)
