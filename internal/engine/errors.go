package engine

import "errors"

var (
	// ErrEmptyLedger возвращается, когда в запрошенном окне нет ни одной
	// транзакции. Подстановка значений по умолчанию — обязанность вызывающего.
	ErrEmptyLedger = errors.New("ledger window is empty")

	// ErrInvalidParameter возвращается при параметрах вне допустимого
	// диапазона: сезонность или волатильность вне [0,1], неположительный
	// горизонт или окно, отсутствующий генератор случайных чисел.
	ErrInvalidParameter = errors.New("invalid parameter")
)
