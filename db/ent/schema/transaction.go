package schema

import (
	"regexp"
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/db/ent/schema/utils"
)

var reMaskedCard = regexp.MustCompile(`^\*[0-9]{4}$`)

var moneyType = map[string]string{
	dialect.Postgres: "numeric(18,2)",
	dialect.SQLite:   "text",
}

// Transaction is one stored receipt.
type Transaction struct{ ent.Schema }

func (Transaction) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "transactions"},
	}
}

func (Transaction) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("id").Immutable(),
		field.Int64("user_id"),
		field.Int64("operator_id").Optional().Nillable(),
		field.Time("date_time"),
		field.String("operation_type").
			Validate(utils.EnumValidator(constants.OperationStrings()...)),
		field.Other("amount", decimal.Decimal{}).
			SchemaType(moneyType),
		field.String("currency").MinLen(3).MaxLen(3).
			SchemaType(map[string]string{dialect.Postgres: "char(3)"}),
		field.String("card_number").Optional().
			Validate(utils.OptionalMatch(reMaskedCard, "card_number must look like *NNNN")),
		field.Text("description").Optional(),
		field.Other("balance", decimal.NullDecimal{}).
			Optional().
			SchemaType(moneyType),
		field.Text("raw_text").NotEmpty().Immutable(),
		field.String("parsed_by").Default("rules"),
		field.Time("created_at").Default(time.Now).Immutable(),
	}
}

func (Transaction) Edges() []ent.Edge {
	return []ent.Edge{
		// MANY transactions -> ONE user (FK: transactions.user_id)
		edge.From("user", User.Type).
			Ref("transactions").
			Field("user_id").
			Required().
			Unique(),
		// OPTIONAL: MANY transactions -> ONE operator (FK: transactions.operator_id)
		edge.From("operator", Operator.Type).
			Ref("transactions").
			Field("operator_id").
			Unique(),
	}
}

func (Transaction) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "date_time"),
	}
}
