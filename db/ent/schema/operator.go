package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Operator is a payee. Rows without an owner are global and visible to every user;
// a personal operator shadows a global one with the same name.
type Operator struct{ ent.Schema }

func (Operator) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "operators"},
	}
}

func (Operator) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("id").Immutable(),
		field.String("name").NotEmpty().MaxLen(255),
		field.Text("description").Optional(),
		field.Int64("user_id").Optional().Nillable(),
		field.Time("created_at").Default(time.Now).Immutable(),
	}
}

func (Operator) Edges() []ent.Edge {
	return []ent.Edge{
		// MANY operators -> ONE optional owner (FK: operators.user_id)
		edge.From("owner", User.Type).
			Ref("operators").
			Field("user_id").
			Unique(),
		edge.To("transactions", Transaction.Type),
	}
}

func (Operator) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id"),
	}
}
