package choicefsm

// Version is the released version of the module.
const Version = "0.3.0"
