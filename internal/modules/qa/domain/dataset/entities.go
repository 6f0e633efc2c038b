package dataset

import "fmt"

// TitanicPassenger 固定结构化数据集的一行。
// schema 与取值域同时内嵌在 NL→SQL 的提示词里（见 sqlgen 包）。
type TitanicPassenger struct {
	PassengerId int      `gorm:"column:passenger_id;primaryKey"`
	Survived    int      `gorm:"column:survived;type:int;not null"`
	Pclass      int      `gorm:"column:pclass;type:int;not null"`
	Name        string   `gorm:"column:name;type:text"`
	Sex         string   `gorm:"column:sex;type:varchar(10)"`
	Age         *float64 `gorm:"column:age;type:double"`
	Sibsp       int      `gorm:"column:sibsp;type:int"`
	Parch       int      `gorm:"column:parch;type:int"`
	Ticket      string   `gorm:"column:ticket;type:varchar(32)"`
	Fare        float64  `gorm:"column:fare;type:double"`
	Cabin       *string  `gorm:"column:cabin;type:varchar(32)"`
	Embarked    *string  `gorm:"column:embarked;type:varchar(4)"`
}

func (TitanicPassenger) TableName() string { return "titanic" }

// Narrate 把一行乘客记录转成一句自然语言，用于把结构化数据摄取进知识库
func (p TitanicPassenger) Narrate() string {
	age := "unknown"
	if p.Age != nil {
		age = fmt.Sprintf("%g", *p.Age)
	}
	survived := "No"
	if p.Survived == 1 {
		survived = "Yes"
	}
	return fmt.Sprintf(
		"Passenger %s was a %s, %s years old, traveling in class %d. The fare was %g. Survived: %s.",
		p.Name, p.Sex, age, p.Pclass, p.Fare, survived,
	)
}
